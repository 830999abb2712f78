package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case StatsResult:
		o.printStatsResult(v)
	case []RoomSummary:
		o.printRooms(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type (matches API)
type HealthResult struct {
	Status string `json:"status"`
}

// StatsResult response type
type StatsResult struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}

// RoomSummary response type
type RoomSummary struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	Players   int    `json:"players"`
	CreatedAt string `json:"createdAt"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func (o *Output) printStatsResult(s StatsResult) {
	fmt.Printf("Rooms: %d\n", s.Rooms)
	fmt.Printf("Players: %d\n", s.Players)
}

func (o *Output) printRooms(rooms []RoomSummary) {
	if len(rooms) == 0 {
		fmt.Println("No active rooms")
		return
	}

	fmt.Printf("%-20s %-10s %-8s %s\n", "NAME", "STATUS", "PLAYERS", "CREATED")
	for _, r := range rooms {
		fmt.Printf("%-20s %-10s %-8d %s\n", r.Name, r.Status, r.Players, r.CreatedAt)
	}
}
