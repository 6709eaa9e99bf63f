package llm

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n[{\"kind\":\"movie\"}]\n```": `[{"kind":"movie"}]`,
		"```\n[]\n```":                        "[]",
		"```JSON []```":                       "[]",
		"  []  ":                              "[]",
		"Here you go: []":                     "Here you go: []",
		"```javascript\n[1]\n```":             "[1]",
		"```js\n[]\n```":                      "[]",
		"[{\"a\":1}]\n```":                    `[{"a":1}]`,
		"```[]":                               "[]",
		"```\n```":                            "",
		"```json":                             "",
	}
	for input, want := range tests {
		if got := StripCodeFence(input); got != want {
			t.Errorf("StripCodeFence(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDecodeLLMJSONExtractsEmbeddedObject(t *testing.T) {
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON("Sure! {\"ok\": true} Hope that helps.", &parsed); err != nil {
		t.Fatalf("DecodeLLMJSON returned error: %v", err)
	}
	if !parsed.OK {
		t.Fatal("expected ok=true")
	}
	if err := DecodeLLMJSON("   ", &parsed); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestSnippetCollapsesWhitespace(t *testing.T) {
	if got := Snippet("a\n\tb   c"); got != "a b c" {
		t.Fatalf("unexpected snippet %q", got)
	}
	if got := Snippet(""); got != "<empty>" {
		t.Fatalf("unexpected empty snippet %q", got)
	}
}
