package repository

import (
	"fmt"
	"strings"

	"github.com/iliyamo/class-schedule/internal/facet"
)

// facetWhere translates a facet set into SQL conditions over the sections
// table aliased as s.  Every value is bound as an argument.
func facetWhere(f facet.Set) ([]string, []any) {
	var where []string
	var args []any

	for _, p := range f.Predicates() {
		switch p := p.(type) {
		case facet.Modality:
			codes := p.Codes()
			where = append(where, "s.modality IN ("+placeholders(len(codes))+")")
			for _, c := range codes {
				args = append(args, c)
			}
		case facet.Days:
			var days []string
			for _, tok := range p.Tokens() {
				days = append(days, "m.meets_"+tok+" = 1")
			}
			where = append(where, `EXISTS (SELECT 1 FROM section_meetings m
				WHERE m.class_id = s.class_id AND (`+strings.Join(days, " OR ")+`))`)
		case facet.TimeRange:
			cond := []string{"m.class_id = s.class_id"}
			if p.HasStart {
				cond = append(cond, "m.start_time >= ?")
				args = append(args, sqlTime(p.Start))
			}
			if p.HasEnd {
				cond = append(cond, "m.end_time <= ?")
				args = append(args, sqlTime(p.End))
			}
			where = append(where, `EXISTS (SELECT 1 FROM section_meetings m
				WHERE `+strings.Join(cond, " AND ")+`)`)
		case facet.Credits:
			where = append(where, "s.credits >= ?")
			args = append(args, p.Min)
		case facet.Availability:
			where = append(where, `EXISTS (SELECT 1 FROM section_seats ss
				WHERE ss.class_id = s.class_id AND ss.seats_available > 0)`)
		case facet.LateStart:
			where = append(where, "s.is_late_start = 1")
		}
	}
	return where, args
}

// sqlTime renders minutes after midnight as a MySQL TIME literal.
func sqlTime(min int) string {
	return fmt.Sprintf("%02d:%02d:00", min/60, min%60)
}
