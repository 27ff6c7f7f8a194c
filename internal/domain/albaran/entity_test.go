package albaran

import (
	"encoding/json"
	"testing"
)

func TestAlbaranUnmarshalAcceptsBothImageKeys(t *testing.T) {
	var snake Albaran
	if err := json.Unmarshal([]byte(`{"id": 1, "source_image_name": "a.jpg"}`), &snake); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snake.SourceImageName == nil || *snake.SourceImageName != "a.jpg" {
		t.Errorf("snake_case image = %v", snake.SourceImageName)
	}

	var camel Albaran
	if err := json.Unmarshal([]byte(`{"id": 2, "sourceImageName": "b.jpg"}`), &camel); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if camel.SourceImageName == nil || *camel.SourceImageName != "b.jpg" {
		t.Errorf("camelCase image = %v", camel.SourceImageName)
	}
}

func TestAlbaranUnmarshalDefaultsLines(t *testing.T) {
	var a Albaran
	if err := json.Unmarshal([]byte(`{"id": 3, "type": "incoming"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.Lines == nil {
		t.Error("lines must never be nil after decoding")
	}
}

func TestIsValidType(t *testing.T) {
	if !IsValidType(TypeIncoming) || !IsValidType(TypeOutgoing) {
		t.Error("both canonical types must validate")
	}
	for _, typ := range []Type{"", "INCOMING", "transfer"} {
		if IsValidType(typ) {
			t.Errorf("type %q must be rejected", typ)
		}
	}
}
