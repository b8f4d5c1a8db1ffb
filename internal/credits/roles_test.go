package credits

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  RoleGroup
	}{
		{"vocals", GroupMusicians},
		{"Lead Vocals", GroupMusicians},
		{"instrument", GroupMusicians},
		{"vocal", GroupMusicians},
		{"guitar", GroupMusicians},
		{"bass guitar", GroupMusicians},
		{"drums", GroupMusicians},
		{"keyboards", GroupMusicians},
		{"banjo", GroupMusicians},
		{"producer", GroupProduction},
		{"Executive Producer", GroupProduction},
		{"additional production", GroupProduction},
		{"composer", GroupWriting},
		{"lyricist", GroupWriting},
		{"writer", GroupWriting},
		{"songwriter", GroupWriting},
		{"mix", GroupEngineering},
		{"mixing", GroupEngineering},
		{"mastering", GroupEngineering},
		{"engineer", GroupEngineering},
		{"audio engineering", GroupEngineering},
		{"organ", GroupMusicians},
		{"organist", GroupMusicians},
		{"guitarist", GroupMusicians},
		{"drummer", GroupMusicians},
		{"synthesizer", GroupMusicians},
		{"co-producer", GroupProduction},
		{"remixer", GroupEngineering},
		{"artwork", GroupOther},
		{"organizer", GroupOther},
		{"tour organization", GroupOther},
		{"ambassador", GroupOther},
		{"photography", GroupOther},
		{"", GroupOther},
		{"   ", GroupOther},
		// Multiple matches resolve by priority order.
		{"vocal producer", GroupMusicians},
		{"producer, engineer", GroupProduction},
		{"songwriter and mixing engineer", GroupWriting},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Classify(tt.label); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestClassifyTotalAndDeterministic(t *testing.T) {
	valid := map[RoleGroup]bool{}
	for _, g := range AllGroups {
		valid[g] = true
	}

	labels := []string{"guitar", "producer", "lyricist", "mastering", "design", "x", "藝術", "MiXeR", "(track 2)"}
	for _, label := range labels {
		first := Classify(label)
		if !valid[first] {
			t.Errorf("Classify(%q) = %q, not a known group", label, first)
		}
		for i := 0; i < 5; i++ {
			if got := Classify(label); got != first {
				t.Errorf("Classify(%q) not deterministic: %q then %q", label, first, got)
			}
		}
	}
}
