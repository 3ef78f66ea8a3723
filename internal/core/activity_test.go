package core

import (
	"testing"
	"time"
)

func activityOn(day string) LearningActivity {
	d, err := time.ParseInLocation(DateLayout, day, time.UTC)
	if err != nil {
		panic(err)
	}
	return LearningActivity{Date: d.Add(10 * time.Hour), Type: ActivityLesson, Points: 5}
}

func TestStreak(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days []string
		want int
	}{
		{
			name: "no activities",
			days: nil,
			want: 0,
		},
		{
			name: "today and yesterday only",
			days: []string{"2024-06-15", "2024-06-14"},
			want: 2,
		},
		{
			name: "today only",
			days: []string{"2024-06-15"},
			want: 1,
		},
		{
			name: "gap two days ago despite older history",
			days: []string{"2024-06-13", "2024-06-12", "2024-06-11"},
			want: 0,
		},
		{
			name: "five consecutive days",
			days: []string{"2024-06-15", "2024-06-14", "2024-06-13", "2024-06-12", "2024-06-11"},
			want: 5,
		},
		{
			name: "run broken by a missing day",
			days: []string{"2024-06-15", "2024-06-14", "2024-06-12"},
			want: 2,
		},
		{
			name: "yesterday only breaks at today",
			days: []string{"2024-06-14"},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var activities []LearningActivity
			for _, d := range tt.days {
				activities = append(activities, activityOn(d))
			}
			if got := Streak(activities, asOf); got != tt.want {
				t.Errorf("Streak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreak_CappedAtWindow(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	var activities []LearningActivity
	for i := 0; i < 45; i++ {
		activities = append(activities, LearningActivity{
			Date: asOf.AddDate(0, 0, -i), Type: ActivityLesson,
		})
	}
	if got := Streak(activities, asOf); got != StreakWindowDays {
		t.Errorf("Streak() = %d, want cap %d", got, StreakWindowDays)
	}
}

func TestStreak_MultipleActivitiesSameDay(t *testing.T) {
	asOf := time.Date(2024, 6, 15, 20, 0, 0, 0, time.UTC)
	activities := []LearningActivity{
		activityOn("2024-06-15"),
		activityOn("2024-06-15"),
		activityOn("2024-06-14"),
	}
	if got := Streak(activities, asOf); got != 2 {
		t.Errorf("Streak() = %d, want 2", got)
	}
}

func TestTotalPoints(t *testing.T) {
	activities := []LearningActivity{
		{Points: 10}, {Points: 5}, {Points: 20},
	}
	if got := TotalPoints(activities); got != 35 {
		t.Errorf("TotalPoints() = %d, want 35", got)
	}
	if got := TotalPoints(nil); got != 0 {
		t.Errorf("TotalPoints(nil) = %d, want 0", got)
	}
}

func TestRecentActivities(t *testing.T) {
	activities := []LearningActivity{
		activityOn("2024-06-10"),
		activityOn("2024-06-14"),
		activityOn("2024-06-12"),
		activityOn("2024-06-15"),
		activityOn("2024-06-11"),
		activityOn("2024-06-09"),
	}

	got := RecentActivities(activities, 5)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Errorf("not sorted newest first at %d", i)
		}
	}
	if got[0].Date.Format(DateLayout) != "2024-06-15" {
		t.Errorf("got[0] = %s, want 2024-06-15", got[0].Date.Format(DateLayout))
	}
}
