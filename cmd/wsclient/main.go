package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"github.com/black-roland/homeassistant-yandex-speechkit/internal/api"
	ws "github.com/black-roland/homeassistant-yandex-speechkit/internal/websocket"
)

// wsclient streams a 16-bit PCM WAV file to the streaming STT endpoint
// and prints the transcript.
func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	entryID := flag.String("entry", "", "config entry ID")
	file := flag.String("file", "", "path to a 16-bit mono PCM WAV file")
	language := flag.String("language", "ru-RU", "recognition language")
	clientID := flag.String("client-id", "", "client ID used to request a token")
	clientSecret := flag.String("client-secret", "", "client secret used to request a token")
	chunkSize := flag.Int("chunk", 3200, "bytes per audio frame")
	flag.Parse()

	if *entryID == "" || *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}
	format, pcm, err := readWAV(data)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *file, err)
	}
	fmt.Printf("✓ Loaded %d bytes of audio (%d Hz, %d-bit, %d channel)\n",
		len(pcm), format.SampleRate, format.BitsPerSample, format.NumChannels)

	base, err := url.Parse(*server)
	if err != nil {
		log.Fatalf("Invalid server URL: %v", err)
	}

	header := http.Header{}
	if *clientID != "" {
		token, err := requestToken(*server, *clientID, *clientSecret)
		if err != nil {
			log.Fatalf("Failed to authenticate: %v", err)
		}
		header.Set("Authorization", "Bearer "+token)
		fmt.Println("✓ Authentication successful")
	}

	wsURL := url.URL{Scheme: "ws", Host: base.Host, Path: "/ws/entries/" + *entryID + "/stt"}
	if base.Scheme == "https" {
		wsURL.Scheme = "wss"
	}

	fmt.Printf("Connecting to: %s\n", wsURL.String())
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL.String(), header)
	if err != nil {
		if resp != nil {
			log.Fatalf("WebSocket connection failed with status %d: %v", resp.StatusCode, err)
		}
		log.Fatalf("WebSocket connection failed: %v", err)
	}
	defer conn.Close()

	start := ws.ListeningStartMessage{
		BaseMessage: ws.BaseMessage{Type: ws.MessageTypeListeningStart, Timestamp: time.Now().Format(time.RFC3339)},
		Language:    *language,
		Format:      "wav",
		Codec:       "pcm",
		SampleRate:  int(format.SampleRate),
		BitRate:     int(format.BitsPerSample),
		Channel:     int(format.NumChannels),
	}
	if err := conn.WriteJSON(start); err != nil {
		log.Fatalf("Failed to send listening_start: %v", err)
	}

	var ack ws.ErrorMessage
	if err := readMessage(conn, &ack); err != nil {
		log.Fatalf("Failed to read listening_start reply: %v", err)
	}
	if ack.Type == ws.MessageTypeError {
		log.Fatalf("Server rejected the session %s: %s", ack.Code, ack.Message)
	}
	fmt.Printf("✓ Session started: %s\n", ack.SessionID)

	frames := 0
	for offset := 0; offset < len(pcm); offset += *chunkSize {
		end := offset + *chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[offset:end]); err != nil {
			log.Fatalf("Failed to send audio frame: %v", err)
		}
		frames++
	}

	end := ws.ListeningEndMessage{
		BaseMessage: ws.BaseMessage{Type: ws.MessageTypeListeningEnd, Timestamp: time.Now().Format(time.RFC3339)},
	}
	if err := conn.WriteJSON(end); err != nil {
		log.Fatalf("Failed to send listening_end: %v", err)
	}
	fmt.Printf("✓ Sent %d audio frames\n", frames)

	conn.SetReadDeadline(time.Now().Add(time.Minute))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Failed to read transcript: %v", err)
		}

		var msg ws.BaseMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Fatalf("Malformed server message: %v", err)
		}

		switch msg.Type {
		case ws.MessageTypeTranscript:
			var transcript ws.TranscriptMessage
			if err := json.Unmarshal(raw, &transcript); err != nil {
				log.Fatalf("Malformed transcript: %v", err)
			}
			fmt.Printf("✓ Transcript (%s, %d ms): %s\n", transcript.State, transcript.DurationMs, transcript.Text)
			return
		case ws.MessageTypeError:
			var failure ws.ErrorMessage
			if err := json.Unmarshal(raw, &failure); err != nil {
				log.Fatalf("Malformed error message: %v", err)
			}
			log.Fatalf("Server error %s: %s", failure.Code, failure.Message)
		}
	}
}

func readMessage(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func requestToken(server, clientID, clientSecret string) (string, error) {
	body, err := json.Marshal(api.TokenRequest{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		return "", err
	}

	resp, err := http.Post(server+"/api/v1/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d", resp.StatusCode)
	}

	var token api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", err
	}
	return token.Token, nil
}
