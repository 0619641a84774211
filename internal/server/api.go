package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"symenc/internal/alphabet"
	"symenc/internal/cipher"
	"symenc/internal/ctxlog"
	"symenc/internal/history"
)

type encryptRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
	Key    string `json:"key,omitempty"`
}

// response carries the status line encoding as JSON: Status is 1 with
// Result set on success, and 0 with Error set on failure.
type response struct {
	Status     int    `json:"status"`
	Result     string `json:"result,omitempty"`
	CipherText string `json:"cipherText,omitempty"`
	Key        string `json:"key,omitempty"`
	Error      string `json:"error,omitempty"`
}

type alphabetResponse struct {
	Symbols string `json:"symbols"`
	Size    int    `json:"size"`
}

type historyEntry struct {
	Seq uint64 `json:"seq"`
	history.Entry
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	content, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	content = append(content, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(status)
	if _, err := w.Write(content); err != nil {
		log := ctxlog.Get(r.Context())
		log.Error("failed to write response", "error", err)
	}
}

type api struct {
	src          cipher.Source
	recorder     cipher.Recorder
	maxBodyBytes int64
}

func (a *api) encrypt(w http.ResponseWriter, r *http.Request) {
	log := ctxlog.Get(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, a.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req encryptRequest
	if err := dec.Decode(&req); err != nil {
		log.Info("malformed request body", "error", err)
		writeJSON(w, r, http.StatusBadRequest, response{Error: "Malformed request body."})
		return
	}

	res, err := a.run(req)
	if err != nil {
		log.Info("encryption failed", "error", err)
		writeJSON(w, r, http.StatusBadRequest, response{Error: cipher.Message(err)})
		return
	}

	if a.recorder != nil {
		if err := a.recorder.Record(r.Context(), res); err != nil {
			log.Error("failed to record encryption", "error", err)
		}
	}

	writeJSON(w, r, http.StatusOK, response{
		Status:     1,
		Result:     res.String(),
		CipherText: res.CipherText,
		Key:        res.Key.String(),
	})
}

func (a *api) run(req encryptRequest) (cipher.Result, error) {
	mode, err := cipher.ParseMethod(req.Method)
	if err != nil {
		return cipher.Result{}, err
	}

	if mode == cipher.Random {
		return cipher.EncryptRandom(req.Text, a.src)
	}

	key, err := cipher.ParseKey(req.Key)
	if err != nil {
		return cipher.Result{}, err
	}
	return cipher.EncryptManual(req.Text, key)
}

func alphabetHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, alphabetResponse{
		Symbols: alphabet.Symbols,
		Size:    alphabet.Size,
	})
}

func historyHandler(w http.ResponseWriter, r *http.Request) {
	if !history.Opened() {
		writeJSON(w, r, http.StatusNotFound, response{Error: "History is disabled."})
		return
	}

	entries := []historyEntry{}
	for seq, entry := range history.All() {
		entries = append(entries, historyEntry{Seq: seq, Entry: entry})
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func clearHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !history.Opened() {
		writeJSON(w, r, http.StatusNotFound, response{Error: "History is disabled."})
		return
	}

	if err := history.Clear(); err != nil {
		ctxlog.Get(r.Context()).Error("failed to clear history", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, response{Error: "Internal server error."})
		return
	}

	ctxlog.Get(r.Context()).Info("history cleared")
	writeJSON(w, r, http.StatusOK, response{Status: 1})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, response{Error: "Not found."})
}
