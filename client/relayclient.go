package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"minimal-signal/config"
	"minimal-signal/wire"
)

// relayClient is a thin HTTP/WebSocket client for the relay's bundle
// store, message queue, and live bridge (spec §6), grounded on the
// teacher's PostKeys/GetKeys request shapes.
type relayClient struct {
	baseURL string
}

func newRelayClient() *relayClient {
	return &relayClient{baseURL: fmt.Sprintf("http://%s", config.RelayAddress)}
}

func (c *relayClient) publishBundle(identity string, b wire.Bundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s%s/%s", c.baseURL, config.BundlePathPrefix, identity)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("relay: publish bundle: unexpected status %s", resp.Status)
	}
	return nil
}

func (c *relayClient) fetchBundle(identity string) (wire.FetchedBundle, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, config.BundlePathPrefix, identity)
	resp, err := http.Get(url)
	if err != nil {
		return wire.FetchedBundle{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wire.FetchedBundle{}, fmt.Errorf("relay: fetch bundle: unexpected status %s", resp.Status)
	}

	var b wire.FetchedBundle
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return wire.FetchedBundle{}, err
	}
	return b, nil
}

func (c *relayClient) postMessage(msg wire.InitialMessage) (uuid.UUID, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return uuid.Nil, err
	}
	url := fmt.Sprintf("%s%s", c.baseURL, config.MessagePathPrefix)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return uuid.Nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("relay: post message: unexpected status %s", resp.Status)
	}

	var out struct {
		SessionID uuid.UUID `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return uuid.Nil, err
	}
	return out.SessionID, nil
}

func (c *relayClient) getMessage(sid uuid.UUID) (wire.InitialMessage, error) {
	url := fmt.Sprintf("%s%s/%s", c.baseURL, config.MessagePathPrefix, sid)
	resp, err := http.Get(url)
	if err != nil {
		return wire.InitialMessage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wire.InitialMessage{}, fmt.Errorf("relay: get message: unexpected status %s", resp.Status)
	}

	var msg wire.InitialMessage
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return wire.InitialMessage{}, err
	}
	return msg, nil
}

func (c *relayClient) listPending(identity string) ([]uuid.UUID, error) {
	url := fmt.Sprintf("%s%s/pending/%s", c.baseURL, config.MessagePathPrefix, identity)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relay: list pending: unexpected status %s", resp.Status)
	}

	var sids []uuid.UUID
	if err := json.NewDecoder(resp.Body).Decode(&sids); err != nil {
		return nil, err
	}
	return sids, nil
}

func (c *relayClient) dialBridge(sid uuid.UUID) (*websocket.Conn, error) {
	url := fmt.Sprintf("ws://%s%s/%s", config.RelayAddress, config.BridgePathPrefix, sid)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}

	// The relay sends a literal "OK" text frame once both bridge peers
	// have joined (spec §6, "sends OK to each when paired").
	_, _, err = conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
