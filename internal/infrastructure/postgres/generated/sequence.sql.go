package generated

import (
	"context"
)

const nextSequenceValue = `-- name: NextSequenceValue :one
INSERT INTO document_sequences (prefix, year, last_value)
VALUES ($1, $2, 1)
ON CONFLICT (prefix, year) DO UPDATE SET last_value = document_sequences.last_value + 1
RETURNING last_value
`

type NextSequenceValueParams struct {
	Prefix string `json:"prefix"`
	Year   int32  `json:"year"`
}

func (q *Queries) NextSequenceValue(ctx context.Context, arg NextSequenceValueParams) (int64, error) {
	row := q.db.QueryRow(ctx, nextSequenceValue, arg.Prefix, arg.Year)
	var last_value int64
	err := row.Scan(&last_value)
	return last_value, err
}
