package scheduling

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtside/tennis-tournament-system/models"
)

func testAllocator() *Allocator {
	return NewAllocator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func day(d int) time.Time {
	return time.Date(2026, time.June, d, 0, 0, 0, 0, time.UTC)
}

func oneDayWindow() Window {
	return Window{
		StartDate: day(1),
		EndDate:   day(1),
		DayStart:  9 * time.Hour,
		DayEnd:    17 * time.Hour,
	}
}

func courts(ids ...int) []*models.Court {
	out := make([]*models.Court, len(ids))
	for i, id := range ids {
		out[i] = &models.Court{ID: id, Name: "Court", Surface: models.SurfaceHard}
	}
	return out
}

// pendingMatch builds a fixture; a zero team id stands for an unresolved slot.
func pendingMatch(id, round, position int, team1, team2 int) *models.Match {
	m := &models.Match{
		ID:       id,
		Round:    round,
		Position: position,
		Status:   models.MatchStatusPending,
		Segment:  models.SegmentWinners,
	}
	if team1 != 0 {
		t1 := team1
		m.Team1ID = &t1
	}
	if team2 != 0 {
		t2 := team2
		m.Team2ID = &t2
	}
	return m
}

func defaultParams(matches []*models.Match) Params {
	return Params{
		TournamentID:  77,
		Matches:       matches,
		Courts:        courts(1, 2),
		Window:        oneDayWindow(),
		SlotDuration:  time.Hour,
		BreakDuration: 30 * time.Minute,
	}
}

func TestAllocateValidation(t *testing.T) {
	Convey("Given malformed allocation requests", t, func() {
		matches := []*models.Match{pendingMatch(1, 1, 1, 1, 2)}

		Convey("zero courts are rejected", func() {
			params := defaultParams(matches)
			params.Courts = nil
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrNoCourts)
		})

		Convey("zero matches are rejected", func() {
			params := defaultParams(nil)
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrNoMatches)
		})

		Convey("an inverted date range is rejected", func() {
			params := defaultParams(matches)
			params.Window.StartDate = day(3)
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrInvalidWindow)
		})

		Convey("an inverted playing day is rejected", func() {
			params := defaultParams(matches)
			params.Window.DayEnd = 8 * time.Hour
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrInvalidWindow)
		})

		Convey("a non-positive slot duration is rejected", func() {
			params := defaultParams(matches)
			params.SlotDuration = 0
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrInvalidDuration)
		})

		Convey("a playing day shorter than one slot is rejected", func() {
			params := defaultParams(matches)
			params.Window.DayEnd = params.Window.DayStart + 30*time.Minute
			_, err := testAllocator().Allocate(params)
			So(err, ShouldWrap, ErrInvalidDuration)
		})
	})
}

func TestAllocateGreedyAssignment(t *testing.T) {
	Convey("Given a four entry knockout on two courts", t, func() {
		matches := []*models.Match{
			pendingMatch(3, 2, 1, 0, 0),
			pendingMatch(1, 1, 1, 1, 4),
			pendingMatch(2, 1, 2, 2, 3),
		}
		result, err := testAllocator().Allocate(defaultParams(matches))
		So(err, ShouldBeNil)

		Convey("every match gets the earliest slot in round then position order", func() {
			So(result.TotalMatches, ShouldEqual, 3)
			So(result.ScheduledMatches, ShouldEqual, 3)

			nine := day(1).Add(9 * time.Hour)
			So(*matches[1].ScheduledAt, ShouldEqual, nine)
			So(*matches[1].CourtID, ShouldEqual, 1)
			So(*matches[2].ScheduledAt, ShouldEqual, nine)
			So(*matches[2].CourtID, ShouldEqual, 2)

			// The final plays after the cadence break.
			So(*matches[0].ScheduledAt, ShouldEqual, day(1).Add(10*time.Hour+30*time.Minute))
			So(*matches[0].CourtID, ShouldEqual, 1)
		})

		Convey("booked slots carry their match reference", func() {
			booked := 0
			for _, slot := range result.Slots {
				if slot.Status == models.SlotBooked {
					booked++
					So(slot.MatchID, ShouldNotBeNil)
				}
			}
			So(booked, ShouldEqual, 3)
		})

		Convey("no two slots on the same court overlap", func() {
			for i, s1 := range result.Slots {
				for _, s2 := range result.Slots[i+1:] {
					if *s1.CourtID == *s2.CourtID {
						So(s1.Overlaps(s2), ShouldBeFalse)
					}
				}
			}
		})

		Convey("a second run over the same inputs books identically", func() {
			rematch := []*models.Match{
				pendingMatch(3, 2, 1, 0, 0),
				pendingMatch(1, 1, 1, 1, 4),
				pendingMatch(2, 1, 2, 2, 3),
			}
			again, err := testAllocator().Allocate(defaultParams(rematch))
			So(err, ShouldBeNil)
			for i := range matches {
				So(*rematch[i].ScheduledAt, ShouldEqual, *matches[i].ScheduledAt)
				So(*rematch[i].CourtID, ShouldEqual, *matches[i].CourtID)
			}
			So(len(again.Conflicts), ShouldEqual, len(result.Conflicts))
		})
	})

	Convey("Given matches that are not schedulable", t, func() {
		done := pendingMatch(9, 1, 1, 1, 2)
		done.Status = models.MatchStatusCompleted
		bye := pendingMatch(10, 1, 2, 3, 0)
		bye.Status = models.MatchStatusBye
		playable := pendingMatch(11, 2, 1, 1, 3)

		result, err := testAllocator().Allocate(defaultParams([]*models.Match{done, bye, playable}))
		So(err, ShouldBeNil)

		Convey("completed and bye fixtures are skipped", func() {
			So(result.TotalMatches, ShouldEqual, 1)
			So(result.ScheduledMatches, ShouldEqual, 1)
			So(done.ScheduledAt, ShouldBeNil)
			So(bye.ScheduledAt, ShouldBeNil)
		})
	})

	Convey("Given more matches than the window can hold", t, func() {
		params := defaultParams([]*models.Match{
			pendingMatch(1, 1, 1, 1, 2),
			pendingMatch(2, 1, 2, 3, 4),
			pendingMatch(3, 1, 3, 5, 6),
		})
		params.Courts = courts(1)
		params.Window.DayEnd = 11 * time.Hour
		params.BreakDuration = 0

		result, err := testAllocator().Allocate(params)
		So(err, ShouldBeNil)

		Convey("the overflow becomes a high severity time conflict, not an error", func() {
			So(result.ScheduledMatches, ShouldEqual, 2)
			So(len(result.Conflicts), ShouldEqual, 1)
			conflict := result.Conflicts[0]
			So(conflict.Type, ShouldEqual, models.ConflictTime)
			So(conflict.Severity, ShouldEqual, models.SeverityHigh)
			So(conflict.MatchIDs, ShouldResemble, []int{3})
		})
	})
}

func TestAllocateExistingSlots(t *testing.T) {
	Convey("Given leftover slots from a previous run", t, func() {
		matchID := 50
		courtID := 1
		nine := day(1).Add(9 * time.Hour)

		orphan := &models.TimeSlot{
			ID: 7, TournamentID: 77, CourtID: &courtID,
			StartTime: nine, EndTime: nine.Add(time.Hour),
			Status: models.SlotBooked,
		}
		taken := &models.TimeSlot{
			ID: 8, TournamentID: 77, CourtID: &courtID, MatchID: &matchID,
			StartTime: nine, EndTime: nine.Add(time.Hour),
			Status: models.SlotBooked,
		}

		params := defaultParams([]*models.Match{pendingMatch(1, 1, 1, 1, 2)})
		params.Courts = courts(1)
		params.Existing = []*models.TimeSlot{orphan, taken}

		result, err := testAllocator().Allocate(params)
		So(err, ShouldBeNil)

		Convey("the orphan is repaired to available before allocation", func() {
			So(result.RepairedSlotIDs, ShouldResemble, []int{7})
			So(orphan.Status, ShouldEqual, models.SlotAvailable)
		})

		Convey("a valid booking keeps its grid cell clear", func() {
			match := params.Matches[0]
			So(*match.ScheduledAt, ShouldEqual, day(1).Add(10*time.Hour+30*time.Minute))
		})
	})
}

func TestAllocateConflictDetection(t *testing.T) {
	Convey("Given a round robin where one player has parallel matches", t, func() {
		team := func(id, player int) *models.Team {
			return &models.Team{ID: id, Player1ID: player}
		}
		m1 := pendingMatch(1, 1, 1, 1, 2)
		m1.Team1, m1.Team2 = team(1, 11), team(2, 12)
		m2 := pendingMatch(2, 1, 2, 1, 3)
		m2.Team1, m2.Team2 = team(1, 11), team(3, 13)
		m3 := pendingMatch(3, 1, 3, 2, 3)
		m3.Team1, m3.Team2 = team(2, 12), team(3, 13)

		result, err := testAllocator().Allocate(defaultParams([]*models.Match{m1, m2, m3}))
		So(err, ShouldBeNil)

		Convey("the parallel booking is reported but allocation still succeeds", func() {
			So(result.ScheduledMatches, ShouldEqual, 3)

			var doubles []models.ScheduleConflict
			for _, c := range result.Conflicts {
				if c.Type == models.ConflictPlayerDoubleBooking {
					doubles = append(doubles, c)
				}
			}
			So(len(doubles), ShouldEqual, 1)
			So(doubles[0].Severity, ShouldEqual, models.SeverityHigh)
			So(doubles[0].MatchIDs, ShouldResemble, []int{1, 2})
		})
	})

	Convey("Given a minimum rest rule on a single court", t, func() {
		params := defaultParams([]*models.Match{
			pendingMatch(1, 1, 1, 1, 2),
			pendingMatch(2, 2, 1, 1, 3),
		})
		params.Courts = courts(1)
		params.BreakDuration = 30 * time.Minute
		params.MinimumRest = 90 * time.Minute

		result, err := testAllocator().Allocate(params)
		So(err, ShouldBeNil)

		Convey("a short turnaround is flagged as a low severity warning", func() {
			So(result.ScheduledMatches, ShouldEqual, 2)

			var rests []models.ScheduleConflict
			for _, c := range result.Conflicts {
				if c.Type == models.ConflictTime {
					rests = append(rests, c)
				}
			}
			So(len(rests), ShouldEqual, 1)
			So(rests[0].Severity, ShouldEqual, models.SeverityLow)
			So(rests[0].MatchIDs, ShouldResemble, []int{1, 2})
		})
	})
}
