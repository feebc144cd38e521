package cli

import "testing"

func TestSourceFromPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"docs/pricing.md", "pricing"},
		{"/abs/path/handbook.txt", "handbook"},
		{"notes", "notes"},
		{".env", ".env"},
	}
	for _, c := range cases {
		if got := sourceFromPath(c.in); got != c.want {
			t.Errorf("sourceFromPath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"version": false, "serve": false, "knowledge": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestKnowledgeSubcommands(t *testing.T) {
	want := map[string]bool{"ingest": false, "list": false, "delete": false}
	for _, cmd := range knowledgeCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("knowledge subcommand %q not registered", name)
		}
	}
}
