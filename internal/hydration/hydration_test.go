package hydration

import (
	"encoding/json"
	"os"
	"testing"
)

func TestExtractFromFixture(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/profile.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	blocks := Extract(string(data))
	if len(blocks) != 3 {
		t.Fatalf("expected 3 hydration blocks, got %d", len(blocks))
	}

	payload := FindUserBlock(blocks)
	if payload == nil {
		t.Fatal("expected a user block to be found")
	}

	var user struct {
		Kind     string `json:"kind"`
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &user); err != nil {
		t.Fatalf("user payload is not valid JSON: %v", err)
	}
	if user.Kind != "user" {
		t.Errorf("expected kind 'user', got %q", user.Kind)
	}
	if user.ID != 42 {
		t.Errorf("expected id 42, got %d", user.ID)
	}
	if user.Username != "forss" {
		t.Errorf("expected username 'forss', got %q", user.Username)
	}
}

func TestExtractNoMatch(t *testing.T) {
	pages := []struct {
		name string
		html string
	}{
		{"empty", ""},
		{"plain html", "<html><body><p>hello</p></body></html>"},
		{"other assignment", `<script>window.__other = [{"a":1}];</script>`},
		{"unterminated", `<script>window.__sc_hydration = [{"a":1}</script>`},
	}

	for _, tt := range pages {
		t.Run(tt.name, func(t *testing.T) {
			if blocks := Extract(tt.html); len(blocks) != 0 {
				t.Errorf("expected no blocks, got %d", len(blocks))
			}
		})
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	html := `<script>window.__sc_hydration = [{"hydratable": "user", "data": }];</script>`
	if blocks := Extract(html); len(blocks) != 0 {
		t.Errorf("expected malformed JSON to yield no blocks, got %d", len(blocks))
	}
}

func TestExtractMultiline(t *testing.T) {
	html := "<script>window.__sc_hydration = [\n" +
		`  {"hydratable": "user", "data": {"kind": "user", "id": 7, "username": "a"}}` + "\n" +
		"];</script>"

	blocks := Extract(html)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block from multi-line payload, got %d", len(blocks))
	}
	if !blocks[0].IsUser() {
		t.Error("expected the block to be a user block")
	}
}

func TestExtractFlatUserBlock(t *testing.T) {
	html := `<script>window.__sc_hydration = [{"kind":"user","id":42,"permalink_url":"https://soundcloud.com/a","username":"A"}];</script>`

	blocks := Extract(html)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !blocks[0].IsUser() {
		t.Fatal("expected flat kind-tagged block to be a user block")
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(blocks[0].UserPayload(), &user); err != nil {
		t.Fatalf("unmarshaling flat user payload: %v", err)
	}
	if user.ID != 42 {
		t.Errorf("expected id 42, got %d", user.ID)
	}
}

func TestFindUserBlockNoUser(t *testing.T) {
	html := `<script>window.__sc_hydration = [{"hydratable":"playlist","data":{"kind":"playlist","id":1}}];</script>`

	blocks := Extract(html)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if payload := FindUserBlock(blocks); payload != nil {
		t.Errorf("expected no user block, got %s", payload)
	}
}

func TestUserEntries(t *testing.T) {
	data, err := os.ReadFile("../../testdata/fixtures/search.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	entries := UserEntries(Extract(string(data)))
	if len(entries) != 2 {
		t.Fatalf("expected 2 user entries, got %d", len(entries))
	}

	ids := make([]int64, 0, len(entries))
	for _, raw := range entries {
		var user struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &user); err != nil {
			t.Fatalf("unmarshaling entry: %v", err)
		}
		ids = append(ids, user.ID)
	}

	if ids[0] != 301 || ids[1] != 302 {
		t.Errorf("expected ids [301 302] in document order, got %v", ids)
	}
}

func TestUserEntriesFlatBlocks(t *testing.T) {
	html := `<script>window.__sc_hydration = [{"kind":"user","id":1,"username":"a"},{"kind":"track","id":2},{"kind":"user","id":3,"username":"b"}];</script>`

	entries := UserEntries(Extract(html))
	if len(entries) != 2 {
		t.Fatalf("expected 2 user entries from flat blocks, got %d", len(entries))
	}
}
