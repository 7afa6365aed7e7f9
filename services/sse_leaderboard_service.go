package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gbonee/hustle-vibes-africa-sub000/models"

	"github.com/gofiber/fiber/v2"
)

type leaderboardEvent struct {
	Top []models.LeaderboardStanding `json:"top"`
	Me  *models.LeaderboardStanding  `json:"me,omitempty"`
}

// standingsFingerprint changes whenever anything a client renders changes.
func standingsFingerprint(ev leaderboardEvent) string {
	var b strings.Builder
	write := func(s models.LeaderboardStanding) {
		rank := -1
		if s.Rank != nil {
			rank = *s.Rank
		}
		fmt.Fprintf(&b, "%s:%d:%d:%d:%s;", s.UserID, s.Points, s.CompletedChallenges, rank, s.DisplayName)
	}
	for _, s := range ev.Top {
		write(s)
	}
	if ev.Me != nil {
		b.WriteString("|")
		write(*ev.Me)
	}
	return b.String()
}

// StreamLeaderboardSSE pushes the top standings (and the entry of userID, when
// set) whenever they change.
func (s *LeaderboardService) StreamLeaderboardSSE(c *fiber.Ctx, userID string) error {
	limit := clampLimit(c.QueryInt("limit", DefaultLeaderboardLimit))
	done := c.Context().Done()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(s.StreamInterval)
		defer ticker.Stop()

		var last string
		push := func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), s.StreamInterval)
			defer cancel()

			top, err := s.GetTopEntries(ctx, limit)
			if err != nil {
				s.log.Warn("[SSE] leaderboard query failed", "user_id", userID, "error", err)
				return true
			}
			ev := leaderboardEvent{Top: top}
			if userID != "" {
				if me, err := s.GetEntryFor(ctx, userID); err == nil {
					ev.Me = me
				}
			}

			fp := standingsFingerprint(ev)
			if fp == last {
				return true
			}
			last = fp

			payload, _ := json.Marshal(ev)
			fmt.Fprintf(w, "event: leaderboard\ndata: %s\n\n", payload)
			return w.Flush() == nil
		}

		if !push() {
			return
		}
		for {
			select {
			case <-ticker.C:
				if !push() {
					// client disconnected
					return
				}
			case <-done:
				return
			}
		}
	})

	return nil
}
