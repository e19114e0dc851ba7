// Package client implements the gocui terminal chat client (spec §6
// wire formats are consumed here, but the TUI itself sits outside the
// spec's core — see SPEC_FULL.md).
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jroimartin/gocui"
	"github.com/sirupsen/logrus"

	"minimal-signal/crypto/curve25519"
	"minimal-signal/directory"
	"minimal-signal/directory/fingerprint"
	"minimal-signal/wire"
)

var logger = logrus.New()

// handshakeInfo is the HKDF/AEAD domain-separation string shared by every
// session this client establishes.
var handshakeInfo = []byte("minimal-signal")

type ChatApp struct {
	Gui         *gocui.Gui
	userID      string
	recipientID string
	messages    []string
	messageLock sync.Mutex
	wg          sync.WaitGroup

	relay *relayClient
	dir   *directory.Client

	sessionID         uuid.UUID
	hasSession        bool
	recipientIdentity curve25519.PublicKey
	bridge            *websocket.Conn
}

// NewChatApp initializes a chat client bound to one local identity.
func NewChatApp(userID string, identity curve25519.Pair) *ChatApp {
	return &ChatApp{
		userID: userID,
		relay:  newRelayClient(),
		dir:    directory.NewClient(identity),
	}
}

// PostKeys publishes this client's prekey bundle to the relay (spec §4.5,
// publish-bundle).
func (app *ChatApp) PostKeys() error {
	bundle, err := app.dir.PublishBundle()
	if err != nil {
		return fmt.Errorf("failed to generate bundle: %w", err)
	}
	if err := app.relay.publishBundle(app.userID, wire.EncodeBundle(bundle)); err != nil {
		return fmt.Errorf("failed to publish bundle: %w", err)
	}
	return nil
}

// connect establishes (or joins) the ratchet session with app.recipientID
// and starts the read loop. If an initial message is already queued for
// us, we are the responder; otherwise we become the initiator on the
// first sent message.
func (app *ChatApp) connect() error {
	pending, err := app.relay.listPending(app.userID)
	if err != nil {
		return fmt.Errorf("failed to list pending handshakes: %w", err)
	}
	if len(pending) == 0 {
		app.updateStatus()
		return nil
	}

	sid := pending[0]
	wireMsg, err := app.relay.getMessage(sid)
	if err != nil {
		return fmt.Errorf("failed to fetch queued handshake: %w", err)
	}
	msg, err := wire.DecodeInitialMessage(wireMsg)
	if err != nil {
		return fmt.Errorf("failed to decode handshake: %w", err)
	}

	plaintext, err := app.dir.AcceptSession(sid, msg, handshakeInfo)
	if err != nil {
		return fmt.Errorf("failed to accept session: %w", err)
	}

	app.sessionID = sid
	app.hasSession = true
	app.recipientIdentity = msg.InitiatorIdentityPub
	app.recordMessage(fmt.Sprintf("[%s] %s", app.recipientID, plaintext))

	return app.joinBridge()
}

func (app *ChatApp) joinBridge() error {
	conn, err := app.relay.dialBridge(app.sessionID)
	if err != nil {
		return fmt.Errorf("failed to join bridge: %w", err)
	}
	app.bridge = conn
	app.updateStatus()

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		app.listenForMessages()
	}()
	return nil
}

func (app *ChatApp) listenForMessages() {
	for {
		_, data, err := app.bridge.ReadMessage()
		if err != nil {
			logger.Errorf("bridge read: %v", err)
			return
		}

		var frame wire.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Errorf("invalid frame: %v", err)
			continue
		}
		headerBytes, payload, err := wire.DecodeFrame(frame)
		if err != nil {
			logger.Errorf("invalid frame encoding: %v", err)
			continue
		}

		plaintext, err := app.dir.Decrypt(app.sessionID, headerBytes, payload)
		if err != nil {
			logger.Errorf("decrypt failed: %v", err)
			continue
		}

		app.recordMessage(fmt.Sprintf("[%s] %s", app.recipientID, plaintext))
	}
}

// sendMessage encrypts and sends one message, running the X3DH handshake
// first if no session exists yet.
func (app *ChatApp) sendMessage(message string) error {
	if !app.hasSession {
		return app.beginSessionAndSend(message)
	}

	headerBytes, payload, err := app.dir.Encrypt(app.sessionID, []byte(message))
	if err != nil {
		return fmt.Errorf("encrypt failed: %w", err)
	}

	frame := wire.EncodeFrame(headerBytes, payload)
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return app.bridge.WriteMessage(websocket.TextMessage, data)
}

func (app *ChatApp) beginSessionAndSend(message string) error {
	fetched, err := app.relay.fetchBundle(app.recipientID)
	if err != nil {
		return fmt.Errorf("failed to fetch recipient bundle: %w", err)
	}
	bundle, err := wire.DecodeFetchedBundle(fetched)
	if err != nil {
		return fmt.Errorf("failed to decode recipient bundle: %w", err)
	}

	initialMsg, session, err := app.dir.BeginSession(bundle, handshakeInfo, []byte(message))
	if err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}

	sid, err := app.relay.postMessage(wire.EncodeInitialMessage(*initialMsg, app.recipientID))
	if err != nil {
		return fmt.Errorf("failed to post handshake: %w", err)
	}

	app.sessionID = sid
	app.dir.RegisterSession(sid, session)
	app.hasSession = true
	app.recipientIdentity = bundle.IdentityPub

	return app.joinBridge()
}

// Fingerprint computes the safety number the two chat participants can
// compare out-of-band to confirm they share the same identity keys
// (spec §2, fingerprint verification). It only works once a session has
// been established.
func (app *ChatApp) Fingerprint() (*[30]int, error) {
	if !app.hasSession {
		return nil, fmt.Errorf("no established session with %s yet", app.recipientID)
	}
	return fingerprint.Combined(
		app.dir.Identity.Pub, []byte(app.userID),
		app.recipientIdentity, []byte(app.recipientID),
	)
}

func (app *ChatApp) recordMessage(line string) {
	app.messageLock.Lock()
	app.messages = append(app.messages, line)
	app.messageLock.Unlock()

	if app.Gui != nil {
		app.Gui.Update(func(g *gocui.Gui) error {
			return app.UpdateMessages(g)
		})
	}
}

// quit handles quitting the application.
func (app *ChatApp) quit(_ *gocui.Gui, _ *gocui.View) error {
	logger.Info("shutting down")
	if app.bridge != nil {
		app.bridge.Close()
	}
	app.wg.Wait()
	return gocui.ErrQuit
}

// InitGui initializes the gocui screen.
func (app *ChatApp) InitGui() error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return fmt.Errorf("failed to initialize gocui: %w", err)
	}
	app.Gui = g
	g.SetManagerFunc(app.layout)

	return nil
}

// PromptRecipientID prompts for the peer's directory identity, then
// switches to the chat layout and attempts to join or start a session
// with them.
func (app *ChatApp) PromptRecipientID() error {
	return app.Gui.SetKeybinding("prompt", gocui.KeyEnter, gocui.ModNone, func(g *gocui.Gui, v *gocui.View) error {
		app.recipientID = strings.TrimSpace(v.Buffer())
		if app.recipientID == "" {
			return nil
		}
		g.DeleteView("prompt")
		g.SetManagerFunc(app.layout)
		g.SetCurrentView("input")

		if err := app.Gui.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, app.SendMessageHandler); err != nil {
			logger.Fatalf("Error setting keybinding for input: %v", err)
		}

		if err := app.connect(); err != nil {
			logger.Fatalf("Error connecting to recipient: %v", err)
		}

		return nil
	})
}

// UpdateMessages redraws the message view from app.messages.
func (app *ChatApp) UpdateMessages(g *gocui.Gui) error {
	v, err := g.View("messages")
	if err != nil {
		return err
	}
	v.Clear()
	for _, msg := range app.messages {
		fmt.Fprintln(v, msg)
	}
	return nil
}

// SendMessageHandler sends the input view's contents as a message on Enter.
func (app *ChatApp) SendMessageHandler(g *gocui.Gui, v *gocui.View) error {
	message := strings.TrimSpace(v.Buffer())
	if message != "" {
		if err := app.sendMessage(message); err != nil {
			logger.Errorf("Error sending message: %v", err)
		}

		app.messages = append(app.messages, "[You] "+message)
		v.Clear()
		v.SetCursor(0, 0)
		app.UpdateMessages(g)
		app.updateStatus()
	}
	return nil
}

// layout lays out the recipient prompt, or — once a recipient is chosen —
// a session-status line above the message/input panes.
func (app *ChatApp) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if app.recipientID == "" {
		if v, err := g.SetView("prompt", maxX/4, maxY/4, 3*maxX/4, maxY/2); err != nil {
			if !errors.Is(err, gocui.ErrUnknownView) {
				return err
			}
			v.Title = "Enter recipient ID"
			v.Editable = true
			v.Wrap = true
			g.SetCurrentView("prompt")
		}
		return nil
	}

	if v, err := g.SetView("status", 0, 0, maxX-1, 2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Session"
		v.Wrap = false
	}

	if v, err := g.SetView("messages", 0, 3, maxX-1, maxY-5); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Chat with " + app.recipientID
		v.Autoscroll = true
		v.Wrap = true
		app.UpdateMessages(g)
	}

	if v, err := g.SetView("input", 0, maxY-4, maxX-1, maxY-2); err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		v.Title = "Type a message (Ctrl+F: fingerprint, Ctrl+C: quit)"
		v.Editable = true
		v.Wrap = true
		g.SetCurrentView("input")
	}

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, app.quit); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyCtrlF, gocui.ModNone, app.showFingerprint); err != nil {
		return err
	}

	app.updateStatus()
	return nil
}

// updateStatus redraws the status line with the recipient and whether a
// ratchet session with them is established yet.
func (app *ChatApp) updateStatus() {
	if app.Gui == nil {
		return
	}
	state := "handshake pending"
	if app.hasSession {
		state = "established (session " + app.sessionID.String()[:8] + ")"
	}
	line := fmt.Sprintf(" peer: %s | %s", app.recipientID, state)

	app.Gui.Update(func(g *gocui.Gui) error {
		v, err := g.View("status")
		if err != nil {
			if errors.Is(err, gocui.ErrUnknownView) {
				return nil
			}
			return err
		}
		v.Clear()
		fmt.Fprintln(v, line)
		return nil
	})
}

// showFingerprint appends the current session's safety number to the
// message view (spec §2, fingerprint verification).
func (app *ChatApp) showFingerprint(g *gocui.Gui, v *gocui.View) error {
	digits, err := app.Fingerprint()
	if err != nil {
		app.messages = append(app.messages, fmt.Sprintf("[fingerprint] %v", err))
		return app.UpdateMessages(g)
	}

	var sb strings.Builder
	for i, d := range digits {
		sb.WriteString(fmt.Sprintf("%d", d))
		if (i+1)%5 == 0 && i != len(digits)-1 {
			sb.WriteByte(' ')
		}
	}
	app.messages = append(app.messages, "[fingerprint] "+sb.String())
	return app.UpdateMessages(g)
}
