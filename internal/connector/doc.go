// Package connector is a client for the running-sessions API of a visual
// testing server.
//
// A session goes through three phases, each one HTTP request:
//
//	c := connector.New("https://server.example", "user", "secret")
//	session, err := c.StartSession(ctx, connector.StartInfo{
//	    AppIDOrName:      "shop",
//	    ScenarioIDOrName: "checkout",
//	    BatchInfo:        connector.NewBatchInfo("nightly"),
//	})
//
//	data, _ := connector.EncodeMatchWindowData(connector.MatchWindowMeta{Tag: "cart"}, png)
//	result, err := c.MatchWindow(ctx, session, data)
//
//	results, err := c.EndSession(ctx, session, false, true)
//
// Every non-2xx answer is a *ServerRequestError; failures before a usable
// response are a *TransportError. The connector never retries. Concurrent
// MatchWindow calls for one session reach the server in no particular
// order, so callers that care about step order must wait for each call.
package connector
