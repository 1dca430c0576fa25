package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level   string
		dev     bool
		want    zapcore.Level
		wantErr bool
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: "WARN", dev: true, want: zapcore.WarnLevel},
		{level: "", want: zapcore.InfoLevel},
		{level: "loud", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			log, err := New(tc.level, tc.dev)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for level %q", tc.level)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !log.Core().Enabled(tc.want) {
				t.Fatalf("level %v should be enabled", tc.want)
			}
			if tc.want > zapcore.DebugLevel && log.Core().Enabled(tc.want-1) {
				t.Fatalf("level %v should be disabled", tc.want-1)
			}
		})
	}
}
