// Package server streams scenario playback to browser clients.
//
// Every WebSocket client gets its own session: a realtime loop, a live
// scenario player and a mirror backend that records the player's document
// writes. The session protocol is:
//
//  1. The server sends a Hello frame with the session ID, the node ID of
//     the mount element and the frame interval. The client clears its
//     mount element and binds it to that ID.
//  2. After every loop task and frame the recorded mutations are sent as
//     Mutations frames, in order. Clients apply them with a mirror.Replica.
//  3. If playback fails the server sends a fatal Error frame and closes
//     the connection with status 1011. When playback finishes the session
//     stays open with the final document.
//
// Client messages are ignored. The server pings every HeartbeatInterval
// and drops clients that answer no ping for two intervals.
//
// Routes:
//
//	GET /          the page, server-rendered with the first tree
//	GET /ws        the mutation stream
//	GET /snapshots the scenario played on a virtual clock, as JSON
//	GET /healthz   status and connected sessions
//	GET /metrics   Prometheus metrics, with WithMetrics
//
// Usage:
//
//	f, err := scenario.Load("fade.yaml")
//	if err != nil {
//	    return err
//	}
//	srv := server.New(f, server.DefaultConfig())
//	return srv.Run(ctx)
package server
