package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/quest-escrow/pkg/errorx"
	"github.com/questx-lab/quest-escrow/pkg/router"
	"github.com/questx-lab/quest-escrow/pkg/xcontext"
)

func Logger(env string) router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		info := fmt.Sprintf("%s | %s | %s", req.Method, req.URL.Path, time.Since(xcontext.StartTime(ctx)))
		if user := xcontext.RequestUserID(ctx); user != "" {
			info = fmt.Sprintf("%s | %s", info, user)
		}

		if err := xcontext.Error(ctx); err != nil {
			var errx errorx.Error
			if errors.As(err, &errx) {
				if env == "local" {
					xcontext.Logger(ctx).Warnf("%s | %d | %s", info, errx.Code, errx.Message)
				} else {
					xcontext.Logger(ctx).Warnf("%s | %d", info, errx.Code)
				}
			} else {
				xcontext.Logger(ctx).Errorf("%s | %d | %v", info, -1, err)
			}
		} else {
			xcontext.Logger(ctx).Infof(info)
		}
	}
}
