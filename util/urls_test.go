package util

import (
	"testing"
)

func TestMakeUrl(t *testing.T) {
	cases := map[string]string{
		MakeUrl("https://gw.example.org", "raw", "abc"):  "https://gw.example.org/raw/abc",
		MakeUrl("https://gw.example.org/", "raw", "abc"): "https://gw.example.org/raw/abc",
		MakeUrl("https://gw.example.org", "/raw/abc"):    "https://gw.example.org/raw/abc",
		MakeUrl("https://gw.example.org"):                "https://gw.example.org",
	}
	for actual, expected := range cases {
		if actual != expected {
			t.Errorf("expected %s, got %s", expected, actual)
		}
	}
}

func TestGetHostname(t *testing.T) {
	cases := map[string]string{
		"https://gw.example.org":           "gw.example.org",
		"https://gw.example.org/some/path": "gw.example.org",
		"https://GW.Example.Org":           "gw.example.org",
		"http://127.0.0.1:8580":            "127.0.0.1",
		"gw.example.org":                   "gw.example.org",
		"gw.example.org:443":               "gw.example.org",
	}
	for input, expected := range cases {
		if actual := GetHostname(input); actual != expected {
			t.Errorf("GetHostname(%s): expected %s, got %s", input, expected, actual)
		}
	}
}
