// Fivebar Watch - dashboard telemetry tail
//
// Connects to a running dashboard and prints its status or step feed
// as it arrives. Useful for watching a run from a second terminal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fivebarlabs/go-fivebar/internal/httpc"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Dashboard host:port")
	feed := flag.String("feed", "steps", "Feed to tail: status or steps")
	flag.Parse()

	if *feed != "status" && *feed != "steps" {
		fmt.Printf("❌ Unknown feed %q (want status or steps)\n", *feed)
		os.Exit(1)
	}

	fmt.Println("👀 Fivebar Watch")
	fmt.Println("================")

	printCurrentStatus(*addr)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/" + *feed}
	fmt.Printf("Connecting to %s...\n", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		fmt.Printf("❌ Dial: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	fmt.Println("✅ Connected")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				fmt.Printf("❌ Read: %v\n", err)
				return
			}
			fmt.Println(string(message))
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		fmt.Println("\n👋 Closing")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// printCurrentStatus fetches the REST snapshot so the tail starts with
// context even before the first broadcast.
func printCurrentStatus(addr string) {
	resp, err := httpc.Get("http://" + addr + "/api/status")
	if err != nil {
		fmt.Printf("⚠️  Status fetch failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}

	var pretty map[string]any
	if json.Unmarshal(body, &pretty) == nil {
		fmt.Printf("Current state: %s\n", body)
	}
}
