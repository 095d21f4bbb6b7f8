package relayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/BioHazard786/roomrelay/internal/signaling"
)

// FetchRooms reads the live room table from the relay's /rooms endpoint.
func FetchRooms(ctx context.Context, endpoint string) ([]signaling.RoomInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build rooms request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rooms: unexpected status %s", resp.Status)
	}

	var rooms []signaling.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("decode rooms: %w", err)
	}
	return rooms, nil
}

// FindRoom returns the entry for id, if the relay has it.
func FindRoom(rooms []signaling.RoomInfo, id string) (signaling.RoomInfo, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return signaling.RoomInfo{}, false
}
