package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"symenc/internal/cipher"
	"symenc/internal/history"
)

var testConfig = Config{
	Host:            "127.0.0.1",
	Port:            8080,
	AntidosBuckets:  4,
	AntidosPeriod:   time.Millisecond,
	MaxBodyBytes:    1024,
	AdminKey:        "hunter2",
	ShutdownTimeout: time.Second,
}

type recorder struct {
	mx      sync.Mutex
	results []string
}

func (r *recorder) Record(_ context.Context, res cipher.Result) error {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.results = append(r.results, res.String())
	return nil
}

func do(t *testing.T, h http.Handler, method, target, body string) (int, response) {
	t.Helper()
	return doAdmin(t, h, "", method, target, body)
}

func doAdmin(t *testing.T, h http.Handler, key, method, target, body string) (int, response) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if key != "" {
		req.Header.Set(adminKeyHeader, key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if have, want := w.Header().Get("Content-Type"), "application/json"; have != want {
		t.Fatalf("Content-Type %q != %q", have, want)
	}

	var resp response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal %q: %v", w.Body.String(), err)
	}
	return w.Code, resp
}

func TestEncrypt(t *testing.T) {
	rec := &recorder{}
	srv := New(context.Background(), testConfig, nil, rec)

	for _, tc := range []struct {
		name   string
		body   string
		status int
		want   response
	}{
		{
			name:   "manual",
			body:   `{"text":"cat","method":"0","key":"123"}`,
			status: http.StatusOK,
			want:   response{Status: 1, Result: "Manual Encryption: dcw with key: 123", CipherText: "dcw", Key: "123"},
		},
		{
			name:   "key length",
			body:   `{"text":"cat","method":"0","key":"12"}`,
			status: http.StatusBadRequest,
			want:   response{Error: "Key is not the same length as the input."},
		},
		{
			name:   "non alphabetic",
			body:   `{"text":"Cat","method":"1"}`,
			status: http.StatusBadRequest,
			want:   response{Error: "Non alphabetic character detected."},
		},
		{
			name:   "invalid method",
			body:   `{"text":"cat","method":"2"}`,
			status: http.StatusBadRequest,
			want:   response{Error: "Invalid method selected."},
		},
		{
			name:   "malformed key",
			body:   `{"text":"cat","method":"0","key":"-12"}`,
			status: http.StatusBadRequest,
			want:   response{Error: "Key must be a non-negative whole number."},
		},
		{
			name:   "malformed body",
			body:   `{"text":`,
			status: http.StatusBadRequest,
			want:   response{Error: "Malformed request body."},
		},
		{
			name:   "unknown field",
			body:   `{"text":"cat","method":"1","extra":true}`,
			status: http.StatusBadRequest,
			want:   response{Error: "Malformed request body."},
		},
		{
			name:   "too large",
			body:   fmt.Sprintf(`{"text":%q,"method":"1"}`, strings.Repeat("a", 2048)),
			status: http.StatusBadRequest,
			want:   response{Error: "Malformed request body."},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := do(t, srv.Handler(), http.MethodPost, "/encrypt", tc.body)
			if have, want := status, tc.status; have != want {
				t.Fatalf("Status %d != %d", have, want)
			}
			if diff := cmp.Diff(tc.want, resp); diff != "" {
				t.Fatalf("Response mismatch (-want +have):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"Manual Encryption: dcw with key: 123"}, rec.results); diff != "" {
		t.Fatalf("Recorded mismatch (-want +have):\n%s", diff)
	}
}

func TestEncryptRandom(t *testing.T) {
	srv := New(context.Background(), testConfig, cipher.DefaultSource, nil)

	status, resp := do(t, srv.Handler(), http.MethodPost, "/encrypt", `{"text":"hello world","method":"1"}`)
	if status != http.StatusOK {
		t.Fatalf("Status %d != %d", status, http.StatusOK)
	}
	if resp.Status != 1 {
		t.Fatalf("Response status %d != 1", resp.Status)
	}

	key, ok := new(big.Int).SetString(resp.Key, 10)
	if !ok {
		t.Fatalf("Key %q is not a number", resp.Key)
	}
	if have, want := resp.CipherText, cipher.Shift("hello world", key); have != want {
		t.Fatalf("CipherText %q != %q", have, want)
	}
}

func TestAlphabet(t *testing.T) {
	srv := New(context.Background(), testConfig, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/alphabet", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status %d != %d", w.Code, http.StatusOK)
	}
	if have, want := w.Body.String(), `{"symbols":"abcdefghijklmnopqrstuvwxyz ","size":27}`+"\n"; have != want {
		t.Fatalf("Body %q != %q", have, want)
	}
}

func TestNotFound(t *testing.T) {
	srv := New(context.Background(), testConfig, nil, nil)

	status, resp := do(t, srv.Handler(), http.MethodGet, "/nope", "")
	if status != http.StatusNotFound {
		t.Fatalf("Status %d != %d", status, http.StatusNotFound)
	}
	if have, want := resp.Error, "Not found."; have != want {
		t.Fatalf("Error %q != %q", have, want)
	}
}

func TestHistory(t *testing.T) {
	srv := New(context.Background(), testConfig, nil, history.Recorder{})

	status, _ := doAdmin(t, srv.Handler(), testConfig.AdminKey, http.MethodGet, "/history", "")
	if status != http.StatusNotFound {
		t.Fatalf("Status without history %d != %d", status, http.StatusNotFound)
	}

	history.Open(history.Config{File: filepath.Join(t.TempDir(), "history.db")})
	t.Cleanup(func() { history.Close() })

	do(t, srv.Handler(), http.MethodPost, "/encrypt", `{"text":"cat","method":"0","key":"123"}`)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set(adminKeyHeader, testConfig.AdminKey)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Status %d != %d", w.Code, http.StatusOK)
	}

	var entries []historyEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("Entries %d != 1", len(entries))
	}
	if have, want := entries[0].CipherText, "dcw"; have != want {
		t.Fatalf("CipherText %q != %q", have, want)
	}
	if have, want := entries[0].Seq, uint64(1); have != want {
		t.Fatalf("Seq %d != %d", have, want)
	}

	status, resp := doAdmin(t, srv.Handler(), testConfig.AdminKey, http.MethodDelete, "/history", "")
	if status != http.StatusOK || resp.Status != 1 {
		t.Fatalf("Clear status %d, response %+v", status, resp)
	}
	n := 0
	for range history.All() {
		n++
	}
	if n != 0 {
		t.Fatalf("Entries after clear %d != 0", n)
	}
}

func TestHistoryRequiresAdmin(t *testing.T) {
	history.Open(history.Config{File: filepath.Join(t.TempDir(), "history.db")})
	t.Cleanup(func() { history.Close() })

	if _, err := history.Add(history.Entry{Mode: "Manual", Text: "secret", CipherText: "tfdsfu", Key: "111111"}); err != nil {
		t.Fatal(err)
	}

	srv := New(context.Background(), testConfig, nil, nil)
	for _, tc := range []struct {
		name   string
		key    string
		method string
	}{
		{"no key", "", http.MethodGet},
		{"wrong key", "hunter3", http.MethodGet},
		{"no key clear", "", http.MethodDelete},
		{"wrong key clear", "hunter", http.MethodDelete},
	} {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := doAdmin(t, srv.Handler(), tc.key, tc.method, "/history", "")
			if have, want := status, http.StatusForbidden; have != want {
				t.Fatalf("Status %d != %d", have, want)
			}
			if have, want := resp.Error, "Admin key required."; have != want {
				t.Fatalf("Error %q != %q", have, want)
			}
		})
	}

	// The cookie form is accepted as well.
	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(&http.Cookie{Name: adminKeyHeader, Value: testConfig.AdminKey})
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if have, want := w.Code, http.StatusOK; have != want {
		t.Fatalf("Cookie status %d != %d", have, want)
	}

	n := 0
	for range history.All() {
		n++
	}
	if n != 1 {
		t.Fatalf("Entries %d != 1", n)
	}
}

func TestHistoryWithoutAdminKey(t *testing.T) {
	history.Open(history.Config{File: filepath.Join(t.TempDir(), "history.db")})
	t.Cleanup(func() { history.Close() })

	config := testConfig
	config.AdminKey = ""
	srv := New(context.Background(), config, nil, nil)

	status, _ := do(t, srv.Handler(), http.MethodGet, "/history", "")
	if have, want := status, http.StatusForbidden; have != want {
		t.Fatalf("Status %d != %d", have, want)
	}
}

func TestRecover(t *testing.T) {
	h := newRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	status, resp := do(t, h, http.MethodGet, "/", "")
	if status != http.StatusInternalServerError {
		t.Fatalf("Status %d != %d", status, http.StatusInternalServerError)
	}
	if have, want := resp.Error, "Internal server error."; have != want {
		t.Fatalf("Error %q != %q", have, want)
	}
}

func TestServe(t *testing.T) {
	srv := New(context.Background(), testConfig, nil, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/alphabet")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status %d != %d", resp.StatusCode, http.StatusOK)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
