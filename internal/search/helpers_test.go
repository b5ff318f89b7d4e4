package search

import (
	"fmt"
	"time"

	"github.com/iliyamo/class-schedule/internal/model"
)

func section(id, subject, number, title string) model.Section {
	cid := model.MustParseClassID(id)
	return model.Section{
		ID:           cid,
		CourseID:     model.CourseID{Subject: subject, Number: number},
		Subject:      subject,
		CourseNumber: number,
		CourseTitle:  title,
		Credits:      5,
		YearQuarter:  cid.YearQuarter(),
	}
}

func hit(id string, rank int) SearchHit {
	return SearchHit{ClassID: model.MustParseClassID(id), Rank: rank}
}

func seats(id string, n int, at time.Time) model.ScheduleData {
	return model.ScheduleData{
		ClassID: model.MustParseClassID(id),
		Seats: model.SeatSnapshot{
			ClassID:        model.MustParseClassID(id),
			SeatsAvailable: &n,
			LastUpdated:    &at,
		},
	}
}

func ids(rs []MergedResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Section.ID.String()
	}
	return out
}

// manySections returns n sections in quarter yrq with distinct item numbers.
func manySections(n int, yrq string) ([]model.Section, []SearchHit) {
	secs := make([]model.Section, n)
	hits := make([]SearchHit, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%04d%s", i, yrq)
		secs[i] = section(id, "MATH", fmt.Sprintf("%03d", 100+i), "Course")
		hits[i] = hit(id, 1)
	}
	return secs, hits
}

var fixedNow = time.Date(2024, time.March, 5, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }
