package toolbuiltin

import (
	"context"
	"time"
)

// ClockTool reports the current time; models cannot know it otherwise.
type ClockTool struct {
	now func() time.Time
}

// NewClockTool constructs a ClockTool on the system clock.
func NewClockTool() *ClockTool {
	return &ClockTool{now: time.Now}
}

func (t *ClockTool) Name() string { return "current_time" }

func (t *ClockTool) Description() string {
	return "Report the current local date and time."
}

func (t *ClockTool) InputSchema() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *ClockTool) Execute(ctx context.Context, _ map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return t.now().Format(time.RFC1123), nil
}
