package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// SaveResponse is the acknowledgement returned by a successful save.
type SaveResponse struct {
	Message string `json:"message"`
}

// SubtasksRequest is the request body for replacing a ticket's subtasks.
type SubtasksRequest struct {
	Subtasks []Record `json:"subtasks"`
}

// GetSnapshot fetches every collection from the data endpoint.
// Missing collections come back empty. A collection that fails to decode is
// reported to the malformed handler and also comes back empty; it never
// fails the whole fetch.
func (c *Client) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := c.Get(ctx, c.dataPath, &raw); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap := &Snapshot{}
	fields := snap.fields()
	for _, name := range Collections {
		data, ok := raw[name]
		if !ok || len(data) == 0 || bytes.Equal(data, []byte("null")) {
			continue
		}
		target := fields[name]
		if err := json.Unmarshal(data, target); err != nil {
			resetField(target)
			if c.onMalformed != nil {
				c.onMalformed(name, err)
			}
		}
	}
	snap.Normalize()

	return snap, nil
}

// SaveSnapshot posts the full snapshot to the data endpoint.
func (c *Client) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	var resp SaveResponse
	if err := c.Post(ctx, c.dataPath, snap, &resp); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SaveTicketSubtasks replaces the subtasks of a single dev ticket through its
// dedicated endpoint.
func (c *Client) SaveTicketSubtasks(ctx context.Context, ticketID ID, subtasks []Record) error {
	if ticketID == "" {
		return fmt.Errorf("ticket id cannot be empty")
	}
	if subtasks == nil {
		subtasks = []Record{}
	}

	path := c.dataPath + "/" + CollectionDevTickets + "/" + url.PathEscape(string(ticketID)) + "/subtasks"
	var resp SaveResponse
	if err := c.Post(ctx, path, SubtasksRequest{Subtasks: subtasks}, &resp); err != nil {
		return fmt.Errorf("failed to save subtasks for ticket %s: %w", ticketID, err)
	}
	return nil
}

func resetField(target any) {
	switch p := target.(type) {
	case *[]Task:
		*p = nil
	case *[]Project:
		*p = nil
	case *Record:
		*p = nil
	case *[]Record:
		*p = nil
	}
}
