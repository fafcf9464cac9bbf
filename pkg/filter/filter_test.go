package filter

import (
	"testing"

	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

func TestPasses(t *testing.T) {
	md := metadata.Normalize(map[string]metadata.Value{
		"env":     metadata.Scalar("Development"),
		"type":    metadata.List("web", "frontend"),
		"version": metadata.Scalar("0.0.1"),
	})

	tests := []struct {
		name string
		spec Spec
		want bool
	}{
		{"nil spec", nil, true},
		{"empty spec", Spec{}, true},
		{"scalar match", Spec{"env": "Development"}, true},
		{"scalar mismatch", Spec{"env": "Production"}, false},
		{"list membership", Spec{"type": "frontend"}, true},
		{"list non-member", Spec{"type": "db"}, false},
		{"missing key", Spec{"owner": "ops"}, false},
		{"conjunction all match", Spec{"env": "Development", "type": "web", "version": "0.0.1"}, true},
		{"conjunction one fails", Spec{"env": "Development", "type": "db"}, false},
		{"case sensitive", Spec{"env": "development"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passes(md, tt.spec); got != tt.want {
				t.Errorf("Passes(%v) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestPasses_EmptyMetadata(t *testing.T) {
	md := metadata.Normalize(nil)
	if !Passes(md, Spec{}) {
		t.Error("empty spec should pass empty metadata")
	}
	if Passes(md, Spec{"env": "Development"}) {
		t.Error("non-empty spec should not pass empty metadata")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    Spec
		wantErr bool
	}{
		{"empty", nil, Spec{}, false},
		{"single", []string{"env=Development"}, Spec{"env": "Development"}, false},
		{"trims", []string{" env = Development "}, Spec{"env": "Development"}, false},
		{"value with equals", []string{"expr=a=b"}, Spec{"expr": "a=b"}, false},
		{"empty value", []string{"env="}, Spec{"env": ""}, false},
		{"missing equals", []string{"env"}, nil, true},
		{"empty key", []string{"=x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Parse()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSpec_String(t *testing.T) {
	s := Spec{"type": "web", "env": "Development"}
	if got, want := s.String(), "env=Development,type=web"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSuggest(t *testing.T) {
	known := []string{"env", "type", "version"}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"enw", "env", true},
		{"tpye", "type", true},
		{"versoin", "version", true},
		{"env", "", false},
		{"completely-different", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := Suggest(tt.key, known)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Suggest(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
