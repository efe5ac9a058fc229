package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

func wrap[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := router.befores
	closers := router.closers

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := xcontext.WithStartTime(requestContext{Context: r.Context(), values: router.root}, time.Now())
		ctx = xcontext.WithHTTPRequest(ctx, r)
		ctx = xcontext.WithHTTPWriter(ctx, w)

		defer func() {
			for _, closer := range closers {
				closer(ctx)
			}
		}()

		if r.Method != method {
			ctx = xcontext.WithError(ctx, errorx.New(errorx.NotImplemented, "Method %s is not supported", r.Method))
			return
		}

		for _, before := range befores {
			newCtx, err := before(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				return
			}
			ctx = newCtx
		}

		var req Request
		if err := decode(r, &req); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot bind the request: %v", err)
			ctx = xcontext.WithError(ctx, errorx.New(errorx.BadRequest, "Invalid request"))
			return
		}

		resp, err := handler(ctx, &req)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
	}
}

func decode(r *http.Request, req any) error {
	switch r.Method {
	case http.MethodGet:
		values := map[string]any{}
		for k, v := range r.URL.Query() {
			if len(v) == 1 {
				values[k] = v[0]
			} else {
				values[k] = v
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			return err
		}

		return decoder.Decode(values)

	case http.MethodPost:
		err := json.NewDecoder(r.Body).Decode(req)
		if errors.Is(err, io.EOF) {
			return nil
		}

		return err
	}

	return errors.New("unsupported method")
}
