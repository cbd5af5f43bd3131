package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rpc-gateway.backend/internal/domain/entities"
	"rpc-gateway.backend/pkg/logger"
)

// WSConn is the subset of *websocket.Conn the frame pump needs. It exists
// so engine tests can run the pump without real sockets.
type WSConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

var wsDialer = websocket.DefaultDialer

// dialUpstreamWS opens the provider-side socket.
func dialUpstreamWS(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
	conn, resp, err := wsDialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// proxyWS pumps frames between the client and upstream sockets until either
// side closes or errors. Normal closure (1000) and going-away (1001) pass
// through; any abnormal upstream close surfaces to the client as 1011.
func proxyWS(ctx context.Context, kind entities.ProviderKind, client WSConn, upstreamURL string, header http.Header) error {
	upstream, err := dialUpstreamWS(ctx, upstreamURL, header)
	if err != nil {
		return err
	}
	defer upstream.Close()
	defer client.Close()

	errc := make(chan error, 2)
	go pumpFrames(client, upstream, errc)
	go pumpFrames(upstream, client, errc)

	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Debug(ctx, "websocket pump ended",
			zap.String("provider", string(kind)), zap.Error(err))
		closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "upstream error")
		_ = client.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))
		return err
	}
	return nil
}

// pumpFrames copies frames in one direction. Close codes 1000/1001 from the
// peer propagate through the paired WriteMessage of the close frame by the
// websocket package; anything else is reported as an error.
func pumpFrames(src, dst WSConn, errc chan<- error) {
	for {
		msgType, msg, err := src.ReadMessage()
		if err != nil {
			errc <- err
			return
		}
		if err := dst.WriteMessage(msgType, msg); err != nil {
			errc <- err
			return
		}
	}
}
