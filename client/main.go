package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

// Message IDs mirrored from the server's network package.
const (
	msgTypeCreateRoom = 101
	msgTypeJoinRoom   = 102
	msgTypeStartGame  = 103
	msgTypeBid        = 104
	msgTypePlayCard   = 105
	msgTypeChat       = 111

	msgTypeRoomCreated = 301
	msgTypeRoomState   = 302
	msgTypeError       = 303
)

func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	name := flag.String("name", "cli", "display name")
	join := flag.String("join", "", "room id to join (create a room when empty)")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			body := message[4:]

			switch msgID {
			case msgTypeRoomCreated:
				fmt.Printf("<< room created: %s\n", body)
			case msgTypeRoomState:
				var snap map[string]interface{}
				if err := json.Unmarshal(body, &snap); err != nil {
					continue
				}
				fmt.Printf("<< phase=%v turn=%v trump=%v hand=%v\n",
					snap["phase"], snap["currentTurn"], snap["trump"], snap["hand"])
			case msgTypeError:
				fmt.Printf("<< error: %s\n", body)
			default:
				fmt.Printf("<< message %d: %s\n", msgID, body)
			}
		}
	}()

	if *join != "" {
		send(c, msgTypeJoinRoom, map[string]string{"roomId": *join, "name": *name})
	} else {
		send(c, msgTypeCreateRoom, map[string]string{"name": *name})
	}

	// Console commands: start | bid N | play CARD | say TEXT
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "start":
				send(c, msgTypeStartGame, struct{}{})
			case "bid":
				if len(fields) < 2 {
					continue
				}
				n, err := strconv.Atoi(fields[1])
				if err != nil {
					continue
				}
				send(c, msgTypeBid, map[string]int{"bid": n})
			case "play":
				if len(fields) < 2 {
					continue
				}
				send(c, msgTypePlayCard, map[string]string{"card": strings.ToUpper(fields[1])})
			case "say":
				send(c, msgTypeChat, map[string]string{"text": strings.Join(fields[1:], " ")})
			default:
				fmt.Println("commands: start | bid N | play CARD | say TEXT")
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
