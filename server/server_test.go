package server

import (
	"bytes"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/verify"
	"github.com/pthm-cable/voltex/volume"
)

func baseConfig() volume.Config {
	return volume.Config{
		Resolution: 16,
		Seed:       42,
		Frequency:  4,
		Octaves:    3,
		Lacunarity: 2,
		Gain:       0.5,
		Gamma:      1,
		Contrast:   1,
	}
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewHandler(baseConfig(), pipeline.Options{SkipStats: true}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var out Outbound
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal %s: %v", data, err)
	}
	return out
}

func TestGenerate(t *testing.T) {
	conn := dial(t)
	send(t, conn, `{"command":"generate","config":{"seed":7}}`)

	var progress []float64
	var out Outbound
	for {
		out = read(t, conn)
		if out.Type != TypeProgress {
			break
		}
		progress = append(progress, out.Percent)
	}

	if out.Type != TypeResult {
		t.Fatalf("got %+v, want result", out)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Errorf("progress = %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Errorf("progress out of order: %v", progress)
			break
		}
	}

	if out.Metadata == nil || out.Metadata.NoiseParams.Seed != 7 || out.Metadata.VolumeResolution != 16 {
		t.Errorf("metadata = %+v", out.Metadata)
	}
	if out.Verification == nil || out.Verification.Status != verify.StatusPass {
		t.Errorf("verification = %+v", out.Verification)
	}
	if out.Raw != nil {
		t.Error("raw sent without includeRaw")
	}

	img, err := png.Decode(bytes.NewReader(out.PNG))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("atlas = %v, want 64x64", b)
	}
}

func TestGenerateIncludeRaw(t *testing.T) {
	conn := dial(t)
	send(t, conn, `{"command":"generate","includeRaw":true}`)

	out := read(t, conn)
	for out.Type == TypeProgress {
		out = read(t, conn)
	}
	if out.Type != TypeResult || len(out.Raw) != 2*16*16*16 {
		t.Errorf("result type %s with %d raw bytes", out.Type, len(out.Raw))
	}
}

func TestVerify(t *testing.T) {
	conn := dial(t)
	send(t, conn, `{"command":"verify","config":{"warpStrength":0.5}}`)

	out := read(t, conn)
	if out.Type != TypeVerification {
		t.Fatalf("got %+v, want verification", out)
	}
	if out.Verification.Status != verify.StatusApproximate {
		t.Errorf("status = %s, want APPROXIMATE", out.Verification.Status)
	}
	if !strings.HasPrefix(out.Summary, "Tileability: APPROXIMATE") {
		t.Errorf("summary = %q", out.Summary)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		stage string
	}{
		{"resolution out of range", `{"command":"generate","config":{"resolution":8}}`, "config"},
		{"negative warp", `{"command":"verify","config":{"warpStrength":-1}}`, "config"},
		{"unknown command", `{"command":"render"}`, StageRequest},
		{"malformed", `{"command":`, StageRequest},
	}

	conn := dial(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, tt.msg)
			out := read(t, conn)
			if out.Type != TypeError || out.Stage != tt.stage {
				t.Errorf("got %+v, want error at stage %s", out, tt.stage)
			}
			if out.Reason == "" {
				t.Error("error without reason")
			}
		})
	}
}
