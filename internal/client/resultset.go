package client

import (
	"encoding/json"
	"fmt"

	"nba_stats/ingestion/internal/convert"
)

// ResultSet is one named table in a stats response
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// Rows zips the row set with the headers. Short rows leave trailing columns unset.
func (rs ResultSet) Rows() []convert.Row {
	rows := make([]convert.Row, 0, len(rs.RowSet))
	for _, raw := range rs.RowSet {
		row := make(convert.Row, len(rs.Headers))
		for i, header := range rs.Headers {
			if i < len(raw) {
				row[header] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

type statsResponse struct {
	ResultSets []ResultSet `json:"resultSets"`
	ResultSet  *ResultSet  `json:"resultSet"`
}

// decodeResultSet extracts the named result set, or the first one when the
// name is not present.
func decodeResultSet(body []byte, name string) ([]convert.Row, error) {
	var resp statsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result sets: %w", err)
	}

	sets := resp.ResultSets
	if len(sets) == 0 && resp.ResultSet != nil {
		sets = []ResultSet{*resp.ResultSet}
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("response has no result sets")
	}

	for _, rs := range sets {
		if rs.Name == name {
			return rs.Rows(), nil
		}
	}
	return sets[0].Rows(), nil
}
