package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/mkadlec/theater-api/internal/repository/redis"
	"github.com/mkadlec/theater-api/internal/service"
	"github.com/mkadlec/theater-api/internal/service/content"
	"github.com/mkadlec/theater-api/internal/service/identity"
	"github.com/mkadlec/theater-api/internal/service/inventory"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	tokens TokenVerifier,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(), Authenticate(tokens))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/shows", handleListShows(svcs))
	r.GET("/shows/future", handleListFutureShows(svcs))
	r.GET("/shows/:id", handleGetShow(svcs))
	r.GET("/gallery", handleListGallery(svcs))
	r.GET("/slider", handleListSlider(svcs))

	r.POST("/buyticket", handleBuyTicket(svcs, idem))

	r.POST("/register", handleRegister(svcs))
	r.POST("/login", handleLogin(svcs))

	r.GET("/userprofile", RequireAuth(), handleUserProfile(svcs))

	// Admin API
	admin := r.Group("/", RequireAdmin())
	{
		admin.POST("/shows", handleCreateShow(svcs))
		admin.PUT("/shows/:id", handleUpdateShow(svcs))
		admin.PATCH("/shows/:id", handleUpdateShow(svcs))
		admin.DELETE("/shows/:id", handleDeleteShow(svcs))
		admin.GET("/tickets", handleListTickets(svcs))

		admin.POST("/gallery", handleCreateGalleryImage(svcs))
		admin.PUT("/gallery/:id", handleUpdateGalleryImage(svcs))
		admin.DELETE("/gallery/:id", handleDeleteGalleryImage(svcs))

		admin.POST("/slider", handleCreateSliderImage(svcs))
		admin.PUT("/slider/:id", handleUpdateSliderImage(svcs))
		admin.DELETE("/slider/:id", handleDeleteSliderImage(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List all shows
// @Success  200  {array}  domain.Show
// @Router   /shows [get]
func handleListShows(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		shows, err := svcs.Inventory.ListShows(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, shows, "public, max-age=60", true)
	}
}

// @Summary  List upcoming shows
// @Success  200  {array}  domain.Show
// @Router   /shows/future [get]
func handleListFutureShows(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		shows, err := svcs.Inventory.ListFutureShows(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s (ticket counts move fast)
		writeJSONWithCache(c, http.StatusOK, shows, "public, max-age=15", true)
	}
}

// @Summary  Get show
// @Param    id  path  int  true  "Show ID"
// @Success  200  {object}  domain.Show
// @Failure  404  {object}  ErrorResponse
// @Router   /shows/{id} [get]
func handleGetShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		show, err := svcs.Inventory.GetShow(c.Request.Context(), showID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, show, "public, max-age=15", true)
	}
}

// @Summary  Create show
// @Param    req body  CreateShowRequest true "payload"
// @Success  201 {object} domain.Show
// @Failure  400 {object} ErrorResponse
// @Router   /shows [post]
func handleCreateShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateShowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		date, err := parseRFC3339(req.Date)
		if err != nil {
			badRequest(c, "invalid date (RFC3339)")
			return
		}
		show, err := svcs.Inventory.CreateShow(c.Request.Context(), inventory.CreateShowInput{
			Name:         req.Name,
			Description:  req.Description,
			Date:         date,
			Place:        req.Place,
			ImageURL:     req.Image,
			TicketsCount: req.TicketsCount,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, show)
	}
}

// @Summary  Update show (partial)
// @Param    id  path  int  true  "Show ID"
// @Param    req body  UpdateShowRequest true "payload"
// @Success  200 {object} domain.Show
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /shows/{id} [patch]
func handleUpdateShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req UpdateShowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		in := inventory.UpdateShowInput{
			Name:         req.Name,
			Description:  req.Description,
			Place:        req.Place,
			ImageURL:     req.Image,
			TicketsCount: req.TicketsCount,
		}
		if req.Date != nil {
			date, err := parseRFC3339(*req.Date)
			if err != nil {
				badRequest(c, "invalid date (RFC3339)")
				return
			}
			in.Date = &date
		}
		show, err := svcs.Inventory.UpdateShow(c.Request.Context(), showID, in)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, show)
	}
}

// @Summary  Delete show
// @Param    id  path  int  true  "Show ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /shows/{id} [delete]
func handleDeleteShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Inventory.DeleteShow(c.Request.Context(), showID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List shows with sold tickets
// @Success  200 {array} domain.ShowWithTickets
// @Router   /tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		shows, err := svcs.Inventory.ListShowsWithTickets(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, shows)
	}
}

// @Summary  Reserve a ticket (idempotent)
// @Param    req body  ReserveTicketRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Ticket
// @Failure  400 {object} ErrorResponse "validation / sold out / unknown show"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /buyticket [post]
func handleBuyTicket(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReserveTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemTicket(req.ShowID, idemKey)

			if payload, ok, _ := idem.GetResult(
				c.Request.Context(),
				idemStorageKey,
			); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(
					http.StatusCreated,
					"application/json; charset=utf-8",
					[]byte(payload),
				)
				return
			}

			locked, err := idem.AcquireLock(
				c.Request.Context(),
				idemStorageKey,
				60*time.Second,
			)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(
					c.Request.Context(),
					idemStorageKey,
				); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(
						http.StatusCreated,
						"application/json; charset=utf-8",
						[]byte(payload),
					)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(
					http.StatusConflict,
					ErrorResponse{Error: "idempotency key in progress"},
				)
				return
			}
		}

		in := inventory.ReserveInput{
			ShowID:     req.ShowID,
			BuyerName:  req.BuyerName,
			BuyerEmail: req.BuyerEmail,
			BuyerPhone: req.BuyerPhone,
			RateKey:    "ip:" + c.ClientIP(),
		}

		if sess, ok := currentSession(c); ok {
			in.UserID = &sess.UserID
		}

		ticket, err := svcs.Inventory.ReserveTicket(c.Request.Context(), in)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, inventory.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(
					http.StatusTooManyRequests,
					ErrorResponse{Error: err.Error()},
				)
				return
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(ticket)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, ticket)
	}
}

// @Summary  Register user
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} RegisterResponse
// @Failure  400 {object} ErrorResponse "duplicate username or email"
// @Router   /register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, err := svcs.Identity.Register(
			c.Request.Context(),
			req.Username,
			req.Email,
			req.Password,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, RegisterResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
	}
}

// @Summary  Login
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} LoginResponse
// @Failure  401 {object} ErrorResponse
// @Router   /login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, token, err := svcs.Identity.Authenticate(
			c.Request.Context(),
			req.Username,
			req.Password,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, LoginResponse{
			Token:    token,
			Username: user.Username,
			Email:    user.Email,
		})
	}
}

// @Summary  Current user profile with tickets
// @Success  200 {object} ProfileResponse
// @Failure  401 {object} ErrorResponse
// @Router   /userprofile [get]
func handleUserProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := currentSession(c)
		user, tickets, err := svcs.Identity.Profile(c.Request.Context(), sess.UserID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ProfileResponse{User: *user, Tickets: tickets})
	}
}

// @Summary  List gallery images
// @Success  200 {array} domain.GalleryImage
// @Router   /gallery [get]
func handleListGallery(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imgs, err := svcs.Content.ListGallery(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, imgs, "public, max-age=60", true)
	}
}

// @Summary  Add gallery image
// @Param    req body  ImageRequest true "payload"
// @Success  201 {object} domain.GalleryImage
// @Router   /gallery [post]
func handleCreateGalleryImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		img, err := svcs.Content.CreateGalleryImage(c.Request.Context(), req.ImageURL)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, img)
	}
}

// @Summary  Replace gallery image
// @Param    id  path  int  true  "Image ID"
// @Param    req body  ImageRequest true "payload"
// @Success  200 {object} domain.GalleryImage
// @Failure  404 {object} ErrorResponse
// @Router   /gallery/{id} [put]
func handleUpdateGalleryImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		img, err := svcs.Content.UpdateGalleryImage(c.Request.Context(), imageID, req.ImageURL)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, img)
	}
}

// @Summary  Delete gallery image
// @Param    id  path  int  true  "Image ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /gallery/{id} [delete]
func handleDeleteGalleryImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Content.DeleteGalleryImage(c.Request.Context(), imageID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List slider images
// @Success  200 {array} domain.SliderImage
// @Router   /slider [get]
func handleListSlider(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imgs, err := svcs.Content.ListSlider(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, imgs, "public, max-age=60", true)
	}
}

// @Summary  Add slider image
// @Param    req body  ImageRequest true "payload"
// @Success  201 {object} domain.SliderImage
// @Router   /slider [post]
func handleCreateSliderImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		img, err := svcs.Content.CreateSliderImage(c.Request.Context(), req.ImageURL)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, img)
	}
}

// @Summary  Replace slider image
// @Param    id  path  int  true  "Image ID"
// @Param    req body  ImageRequest true "payload"
// @Success  200 {object} domain.SliderImage
// @Failure  404 {object} ErrorResponse
// @Router   /slider/{id} [put]
func handleUpdateSliderImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		var req ImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		img, err := svcs.Content.UpdateSliderImage(c.Request.Context(), imageID, req.ImageURL)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, img)
	}
}

// @Summary  Delete slider image
// @Param    id  path  int  true  "Image ID"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /slider/{id} [delete]
func handleDeleteSliderImage(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		if err := svcs.Content.DeleteSliderImage(c.Request.Context(), imageID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// inventory service
	case errors.Is(err, inventory.ErrShowNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "show not found"})
	case errors.Is(err, inventory.ErrNoTicketsAvailable):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no tickets available"})
	case errors.Is(err, inventory.ErrDateNotFuture):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "show date must be in the future"})
	case errors.Is(err, inventory.ErrInvalidShow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, inventory.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
	// identity service
	case errors.Is(err, identity.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "username already taken"})
	case errors.Is(err, identity.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "email already registered"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
	case errors.Is(err, identity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	// content service
	case errors.Is(err, content.ErrImageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "image not found"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
