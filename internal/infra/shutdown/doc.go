// Package shutdown orders process teardown for notechain-server.
//
// Hooks run in reverse registration order once SIGINT or SIGTERM arrives,
// the context passed to WaitContext is cancelled, or Trigger is called.
// The server registers the snapshot hook before its listeners, so HTTP
// and the admin socket stop accepting requests before the table is frozen:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("storage", engine.Close)
//	h.OnShutdown("snapshot", preRestart)
//	h.OnShutdown("http", srv.Shutdown)
//	err := h.Wait()
package shutdown
