// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT, SIGTERM or a programmatic Trigger, then runs
// the registered hooks newest first under a shared timeout.
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	if err := h.Wait(); err != nil {
//		// one or more hooks failed
//	}
package shutdown
