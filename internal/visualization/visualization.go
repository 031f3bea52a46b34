package visualization

import (
	"fmt"
	"strings"
	"time"

	"github.com/wimm-developers/BreakTime/internal/work"
)

type Visualizer struct{}

func New() *Visualizer {
	return &Visualizer{}
}

// WeekPlan is the set of reminders the scheduler would fire during one
// Monday-to-Sunday week.
type WeekPlan struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Schedule  work.Schedule
	Reminders []time.Time
}

// NewWeekPlan walks the scheduler's re-arm chain from `from` to the end of
// the week that contains it.
func NewWeekPlan(s work.Schedule, from time.Time) (*WeekPlan, error) {
	weekStart := weekStartOf(from)
	plan := &WeekPlan{
		WeekStart: weekStart,
		WeekEnd:   weekStart.AddDate(0, 0, 7),
		Schedule:  s,
	}

	at := from
	for i := 0; i < 7*work.MinutesPerDay; i++ {
		next, err := work.NextReminderAt(s, at)
		if err != nil {
			return nil, err
		}
		if !next.Before(plan.WeekEnd) {
			break
		}
		plan.Reminders = append(plan.Reminders, next)
		at = next
	}
	return plan, nil
}

func weekStartOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	d := t.AddDate(0, 0, -weekday+1)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

func (v *Visualizer) GenerateWeekSVG(plan *WeekPlan) string {
	width := 720
	height := 360
	padding := 50
	top := 70
	rowHeight := float64(height-top-padding) / 7
	pxPerMinute := float64(width-2*padding) / float64(work.MinutesPerDay)

	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	var rows strings.Builder
	for i := 0; i < 7; i++ {
		day := plan.WeekStart.AddDate(0, 0, i)
		y := float64(top) + float64(i)*rowHeight

		rows.WriteString(fmt.Sprintf(`<text x="%d" y="%.0f" font-size="12" fill="#7f8c8d">%s</text>`,
			padding-40, y+rowHeight/2+4, dayNames[i]))

		if !work.IsWorkDay(day.Weekday(), plan.Schedule.WorkDays) {
			continue
		}
		for _, seg := range windowSegments(plan.Schedule) {
			rows.WriteString(fmt.Sprintf(`<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="#D6EAF8" rx="3"/>`,
				float64(padding)+float64(seg[0])*pxPerMinute, y+4,
				float64(seg[1]-seg[0])*pxPerMinute, rowHeight-8))
		}
	}

	var marks strings.Builder
	for _, r := range plan.Reminders {
		i := int(r.Sub(plan.WeekStart).Hours()) / 24
		if i < 0 || i > 6 {
			continue
		}
		m := work.MomentOf(r)
		x := float64(padding) + float64(m.MinuteOfDay)*pxPerMinute
		y := float64(top) + float64(i)*rowHeight + rowHeight/2
		marks.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#E67E22"><title>%s</title></circle>`,
			x, y, r.Format("Mon 15:04")))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <defs>
    <linearGradient id="bgGrad" x1="0%%" y1="0%%" x2="0%%" y2="100%%">
      <stop offset="0%%" style="stop-color:#f5f7fa"/>
      <stop offset="100%%" style="stop-color:#e4e8ec"/>
    </linearGradient>
  </defs>
  <rect width="%d" height="%d" fill="url(#bgGrad)" rx="10"/>
  <text x="%d" y="30" text-anchor="middle" font-size="18" font-weight="bold" fill="#2c3e50">Break Reminders</text>
  <text x="%d" y="52" text-anchor="middle" font-size="12" fill="#7f8c8d">%s - %s | %d reminders | every %d min</text>

  <!-- Work windows -->
  %s

  <!-- Hour grid -->
  %s

  <!-- Reminders -->
  %s
</svg>`,
		width, height, width, height,
		width, height,
		width/2,
		width/2, plan.WeekStart.Format("Jan 2"), plan.WeekEnd.AddDate(0, 0, -1).Format("Jan 2"),
		len(plan.Reminders), plan.Schedule.BreakInterval,
		rows.String(),
		v.generateHourGrid(padding, top, width, height),
		marks.String(),
	)
}

// windowSegments splits the work window into [from, to) minute ranges on a
// single day row. Night shifts draw as an evening and a morning segment.
func windowSegments(s work.Schedule) [][2]int {
	if s.IsDayShift() {
		return [][2]int{{s.StartMinute, s.EndMinute}}
	}
	if s.StartMinute == s.EndMinute {
		return [][2]int{{0, work.MinutesPerDay}}
	}
	return [][2]int{{s.StartMinute, work.MinutesPerDay}, {0, s.EndMinute}}
}

func (v *Visualizer) generateHourGrid(padding, top, width, height int) string {
	var lines strings.Builder
	span := float64(width - 2*padding)
	for h := 0; h <= 24; h += 3 {
		x := float64(padding) + float64(h)/24*span
		lines.WriteString(fmt.Sprintf(`<line x1="%.0f" y1="%d" x2="%.0f" y2="%d" stroke="#E0E0E0"/>`,
			x, top, x, height-padding))
		lines.WriteString(fmt.Sprintf(`<text x="%.0f" y="%d" text-anchor="middle" font-size="10" fill="#7f8c8d">%02d:00</text>`,
			x, height-padding+16, h%24))
	}
	return lines.String()
}

// TextTimeline renders reminders one per line with the gap since the
// previous one, starting from `from`.
func (v *Visualizer) TextTimeline(from time.Time, reminders []time.Time) string {
	if len(reminders) == 0 {
		return "No reminders scheduled.\n"
	}

	var sb strings.Builder
	prev := from
	currentDay := ""
	for _, r := range reminders {
		day := r.Format("Mon Jan 2")
		if day != currentDay {
			sb.WriteString(fmt.Sprintf("%s\n", day))
			currentDay = day
		}
		gap := r.Sub(prev).Round(time.Minute)
		sb.WriteString(fmt.Sprintf("  %s  %s\n", r.Format("15:04"), formatGap(gap)))
		prev = r
	}
	return sb.String()
}

func formatGap(d time.Duration) string {
	minutes := int(d / time.Minute)
	switch {
	case minutes < 60:
		return fmt.Sprintf("+%dm", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("+%dh", minutes/60)
	default:
		return fmt.Sprintf("+%dh%02dm", minutes/60, minutes%60)
	}
}
