package history

import (
	"database/sql"
	"time"
)

const passColumns = "id, status, started_at, finished_at, playlist_count, track_count, error_message"

const playlistColumns = "id, pass_id, remote_id, name, type, owner, track_count, cover_source, created_at"

func scanPass(scanner interface{ Scan(dest ...any) error }) (*Pass, error) {
	var (
		id            string
		statusStr     string
		startedRaw    sql.NullString
		finishedRaw   sql.NullString
		playlistCount sql.NullInt64
		trackCount    sql.NullInt64
		errorMessage  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&statusStr,
		&startedRaw,
		&finishedRaw,
		&playlistCount,
		&trackCount,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	pass := &Pass{
		ID:            id,
		Status:        Status(statusStr),
		PlaylistCount: int(playlistCount.Int64),
		TrackCount:    int(trackCount.Int64),
		ErrorMessage:  errorMessage.String,
	}
	pass.StartedAt = parseTimestamp(startedRaw)
	pass.FinishedAt = parseTimestamp(finishedRaw)
	return pass, nil
}

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*PlaylistRecord, error) {
	var (
		id          int64
		passID      string
		remoteID    sql.NullString
		name        string
		typeStr     string
		owner       sql.NullString
		trackCount  sql.NullInt64
		coverSource sql.NullString
		createdRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&passID,
		&remoteID,
		&name,
		&typeStr,
		&owner,
		&trackCount,
		&coverSource,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	rec := &PlaylistRecord{
		ID:          id,
		PassID:      passID,
		RemoteID:    remoteID.String,
		Name:        name,
		Type:        typeStr,
		Owner:       owner.String,
		TrackCount:  int(trackCount.Int64),
		CoverSource: coverSource.String,
	}
	rec.CreatedAt = parseTimestamp(createdRaw)
	return rec, nil
}

func parseTimestamp(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw.String)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
