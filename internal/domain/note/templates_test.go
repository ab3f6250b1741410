package note

import "testing"

func TestTemplates_All(t *testing.T) {
	all := Templates("")
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	if all[0].Name != "General Follow-up" || all[3].Name != "Pediatric Well-Child" {
		t.Errorf("unexpected ordering: %s ... %s", all[0].Name, all[3].Name)
	}
}

func TestTemplates_SpecialtyFilter(t *testing.T) {
	cases := []struct {
		specialty string
		want      int
	}{
		{"General", 2},
		{"general", 2},
		{"Emergency", 1},
		{"Pediatrics", 1},
		{"Cardiology", 0},
	}
	for _, tc := range cases {
		if got := Templates(tc.specialty); len(got) != tc.want {
			t.Errorf("Templates(%q) len = %d, want %d", tc.specialty, len(got), tc.want)
		}
	}
}
