package classify

import "testing"

func TestCallingDisplayOrder(t *testing.T) {
	tests := []struct {
		title string
		want  int
	}{
		{"Bishop", 1},
		{"Bishopric First Counselor", 2},
		{"Bishopric Second Counselor", 3},
		{"Elders Quorum President", 1},
		{"Ward Mission Leader", 5},
		{"Ward Executive Secretary", 10},
		{"Relief Society Secretary", 11},
		{"Ward Clerk", 12},
		{"Assistant Ward Clerk", 13},
		{"Gospel Doctrine Teacher", 21},
		{"Primary Instructor", 20},
		{"Ward Choir Director", 24},
		{"Organist", 26},
		{"Primary Chorister", 25},
		{"Activities Coordinator", 30},
		{"Activities Committee Member", 31},
		{"Young Men Advisor", 40},
		{"Family History Specialist", 41},
		{"Librarian", 50},
	}
	for _, tt := range tests {
		if got := CallingDisplayOrder(tt.title); got != tt.want {
			t.Errorf("CallingDisplayOrder(%q) = %d, want %d", tt.title, got, tt.want)
		}
	}
}

func TestCallingDisplayOrderDeterministic(t *testing.T) {
	// Titles matching several rules must always resolve the same way
	for i := 0; i < 10; i++ {
		if got := CallingDisplayOrder("Bishopric First Counselor"); got != 2 {
			t.Fatalf("run %d: got %d, want 2", i, got)
		}
	}
}

func TestOrgDisplayOrder(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Bishopric", 1},
		{"Elders Quorum", 2},
		{"Relief Society", 3},
		{"Stake Young Men", 80},
		{"High Council", 80},
		{"High Priests Quorum", 81},
		{"Elders Quorum - Teachers", 50},
		{"Elders Quorum - Ministering", 52},
		{"Unassigned Members", 95},
		{"Something Entirely Else", 50},
	}
	for _, tt := range tests {
		if got := OrgDisplayOrder(tt.name); got != tt.want {
			t.Errorf("OrgDisplayOrder(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
