// Package router 负责HTTP路由注册和中间件链的组装。
package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sabordaterra/loja/internal/api"
	"github.com/sabordaterra/loja/internal/cache"
	"github.com/sabordaterra/loja/internal/config"
	"github.com/sabordaterra/loja/internal/limiter"
	mw "github.com/sabordaterra/loja/internal/middleware"
	"github.com/sabordaterra/loja/internal/resp"
	"github.com/sabordaterra/loja/internal/service"
)

// Dependencies 包含路由注册所需的全部处理器和服务
type Dependencies struct {
	UserHandler     *api.UserHandler
	ProductHandler  *api.ProductHandler
	CartHandler     *api.CartHandler
	LoyaltyHandler  *api.LoyaltyHandler
	OrderHandler    *api.OrderHandler
	CheckoutHandler *api.CheckoutHandler
	SettingsHandler *api.SettingsHandler
	JWTService      service.JWTService
	Cache           cache.Cache
	CheckoutLimiter limiter.Limiter
}

// Setup 注册所有路由并组装中间件链，返回最终的HTTP处理器。
func Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := mw.AuthMiddleware(deps.JWTService, lg)
	optionalAuth := mw.OptionalAuth(deps.JWTService, lg)
	admin := mw.RequireAdmin(lg)

	// 健康检查
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		reqID := mw.RequestIDFromContext(r.Context())
		data := map[string]any{
			"status":  "ok",
			"version": cfg.App.Version,
		}
		resp.OK(w, &data, reqID, "")
	})

	// 认证相关（无需登录）
	mux.HandleFunc("/api/v1/auth/register", methodOnly(http.MethodPost, deps.UserHandler.Register))
	mux.HandleFunc("/api/v1/auth/login", methodOnly(http.MethodPost, deps.UserHandler.Login))
	mux.HandleFunc("/api/v1/auth/refresh", methodOnly(http.MethodPost, deps.UserHandler.RefreshToken))

	// 用户资料（需要登录）
	mux.Handle("/api/v1/users/profile", auth(http.HandlerFunc(deps.UserHandler.GetProfile)))

	// 商品目录（公开）
	mux.HandleFunc("/api/v1/products", methodOnly(http.MethodGet, deps.ProductHandler.ListProducts))
	mux.HandleFunc("/api/v1/products/search", methodOnly(http.MethodGet, deps.ProductHandler.SearchProducts))
	mux.HandleFunc("/api/v1/products/", methodOnly(http.MethodGet, deps.ProductHandler.GetProduct))

	// 购物车（按会话，无需登录）
	mux.HandleFunc("/api/v1/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.CartHandler.GetCart(w, r)
		case http.MethodDelete:
			deps.CartHandler.ClearCart(w, r)
		default:
			methodNotAllowed(w, r)
		}
	})
	mux.HandleFunc("/api/v1/cart/items", methodOnly(http.MethodPost, deps.CartHandler.AddItem))
	mux.HandleFunc("/api/v1/cart/items/update", methodOnly(http.MethodPost, deps.CartHandler.UpdateItem))
	mux.HandleFunc("/api/v1/cart/items/remove", methodOnly(http.MethodPost, deps.CartHandler.RemoveItem))

	// 结算：报价公开，提交带幂等和限流保护；两者都识别可选的登录态
	mux.Handle("/api/v1/checkout/quote",
		optionalAuth(http.HandlerFunc(methodOnly(http.MethodPost, deps.CheckoutHandler.Quote))))

	submit := http.Handler(http.HandlerFunc(methodOnly(http.MethodPost, deps.CheckoutHandler.Submit)))
	submit = mw.Idempotency(deps.Cache, 24*time.Hour, lg)(submit)
	if deps.CheckoutLimiter != nil {
		submit = limiter.Middleware(deps.CheckoutLimiter, limiter.KeyBySession, lg)(submit)
	}
	mux.Handle("/api/v1/checkout/submit", optionalAuth(submit))

	// 订单（需要登录）
	mux.Handle("/api/v1/orders", auth(http.HandlerFunc(methodOnly(http.MethodGet, deps.OrderHandler.ListOrders))))
	mux.Handle("/api/v1/orders/", auth(http.HandlerFunc(methodOnly(http.MethodGet, deps.OrderHandler.GetOrder))))

	// 忠诚度（需要登录）
	mux.Handle("/api/v1/loyalty", auth(http.HandlerFunc(methodOnly(http.MethodGet, deps.LoyaltyHandler.GetSummary))))
	mux.Handle("/api/v1/loyalty/rewards", auth(http.HandlerFunc(methodOnly(http.MethodGet, deps.LoyaltyHandler.GetOfferableRewards))))

	// 管理后台（需要管理员权限）
	mux.Handle("/api/v1/admin/products", auth(admin(http.HandlerFunc(
		methodOnly(http.MethodPost, deps.ProductHandler.CreateProduct)))))
	mux.Handle("/api/v1/admin/products/stats", auth(admin(http.HandlerFunc(
		methodOnly(http.MethodGet, deps.ProductHandler.GetProductStats)))))
	mux.Handle("/api/v1/admin/products/", auth(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			deps.ProductHandler.UpdateProduct(w, r)
		case http.MethodDelete:
			deps.ProductHandler.DeleteProduct(w, r)
		default:
			methodNotAllowed(w, r)
		}
	}))))
	mux.Handle("/api/v1/admin/settings/loyalty", auth(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			deps.SettingsHandler.GetLoyaltySettings(w, r)
		case http.MethodPut:
			deps.SettingsHandler.UpdateLoyaltySettings(w, r)
		default:
			methodNotAllowed(w, r)
		}
	}))))

	// 中间件链，请求按 access log → CORS → timeout → recovery → request ID → session 的顺序进入
	handler := mw.Session(mux)
	handler = mw.RequestID(handler)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.CORS(cfg.CORS)(handler)
	handler = mw.AccessLog(lg)(handler)

	return handler
}

// methodOnly 只接受指定方法的处理器包装
func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			methodNotAllowed(w, r)
			return
		}
		next(w, r)
	}
}

// methodNotAllowed 统一的405响应
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	reqID := mw.RequestIDFromContext(r.Context())
	resp.Error(w, http.StatusMethodNotAllowed, resp.CodeInvalidParam, "method not allowed", reqID, "")
}
