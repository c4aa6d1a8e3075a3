package sochx_test

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_EmitDeliversToGroupMembers(t *testing.T) {
	hub := sochx.NewHub(noopLogger{})

	alice := hub.Join(sochx.UserGroup("alice"))
	bob := hub.Join(sochx.UserGroup("bob"))
	defer hub.Leave(alice)
	defer hub.Leave(bob)

	hub.Emit(sochx.UserGroup("alice"), "notification", "hello alice")

	select {
	case env := <-alice.Events():
		assert.Equal(t, "notification", env.Event)
		assert.Equal(t, "hello alice", env.Payload)
	default:
		t.Fatal("expected an event for alice")
	}

	select {
	case env := <-bob.Events():
		t.Fatalf("bob should not receive alice's event, got %v", env)
	default:
	}
}

func TestHub_MultipleSessionsSameGroup(t *testing.T) {
	hub := sochx.NewHub(noopLogger{})

	first := hub.Join(sochx.UserGroup("u1"))
	second := hub.Join(sochx.UserGroup("u1"))
	defer hub.Leave(first)
	defer hub.Leave(second)

	assert.Equal(t, 2, hub.GroupSize(sochx.UserGroup("u1")))

	hub.Emit(sochx.UserGroup("u1"), "notification", "fan out")

	for _, s := range []*sochx.Session{first, second} {
		select {
		case env := <-s.Events():
			assert.Equal(t, "fan out", env.Payload)
		default:
			t.Fatal("every session in the group should receive the event")
		}
	}
}

func TestHub_Leave(t *testing.T) {
	hub := sochx.NewHub(noopLogger{})

	t.Run("removes the session and closes its stream", func(t *testing.T) {
		s := hub.Join(sochx.UserGroup("u2"))
		require.Equal(t, 1, hub.GroupSize(sochx.UserGroup("u2")))

		hub.Leave(s)

		assert.Zero(t, hub.GroupSize(sochx.UserGroup("u2")))

		_, open := <-s.Events()
		assert.False(t, open)
	})

	t.Run("is idempotent", func(t *testing.T) {
		s := hub.Join(sochx.UserGroup("u3"))
		hub.Leave(s)
		assert.NotPanics(t, func() { hub.Leave(s) })
	})

	t.Run("emit after leave is a no-op", func(t *testing.T) {
		s := hub.Join(sochx.UserGroup("u4"))
		hub.Leave(s)
		assert.NotPanics(t, func() {
			hub.Emit(sochx.UserGroup("u4"), "notification", "into the void")
		})
	})
}

func TestHub_SlowSessionDoesNotBlockEmit(t *testing.T) {
	hub := sochx.NewHub(noopLogger{})

	s := hub.Join(sochx.UserGroup("slow"))
	defer hub.Leave(s)

	// Nobody drains the session, so the buffer fills and later events drop.
	for i := 0; i < 100; i++ {
		hub.Emit(sochx.UserGroup("slow"), "notification", i)
	}

	received := 0
	for {
		select {
		case <-s.Events():
			received++
			continue
		default:
		}
		break
	}

	assert.Greater(t, received, 0)
	assert.Less(t, received, 100)
}

// gatewayApp mounts the upgrade gate in front of a handler that echoes the
// subject of the claims the gate stored, so tests can observe what crossed it.
func gatewayApp(gateway *sochx.RealtimeGateway) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) && richErr.Code > 0 {
				return c.Status(richErr.Code).JSON(fiber.Map{"text_code": richErr.TextCode})
			}
			var fiberErr *fiber.Error
			if stderrors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).SendString(fiberErr.Message)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	app.Get("/ws", gateway.Upgrade, func(c *fiber.Ctx) error {
		claims, ok := sochx.ClaimsFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.Subject())
	})

	return app
}

func upgradeRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set(fiber.HeaderConnection, "Upgrade")
	req.Header.Set(fiber.HeaderUpgrade, "websocket")
	return req
}

func TestRealtimeGateway_Upgrade(t *testing.T) {
	signingKey := []byte("gateway-test-key")
	tokens := sochx.NewTokenService(signingKey, time.Hour, noopLogger{})
	gateway := sochx.NewRealtimeGateway(sochx.NewHub(noopLogger{}), tokens, noopLogger{})
	app := gatewayApp(gateway)

	account := &sochx.User{
		ID:    uuid.New(),
		Email: "ada@example.com",
		Role:  sochx.RoleStudentResearcher,
	}

	token, err := tokens.Issue(account.AsIdentity())
	require.NoError(t, err)

	t.Run("rejects a plain http request", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	})

	t.Run("rejects a handshake without a credential", func(t *testing.T) {
		resp, err := app.Test(upgradeRequest())
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a handshake with a garbage token", func(t *testing.T) {
		req := upgradeRequest()
		req.Header.Set(fiber.HeaderCookie, sochx.SessionCookieName+"=garbage")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects an expired credential", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		stale := sochx.NewTokenService(signingKey, time.Hour, noopLogger{}).
			WithClock(func() time.Time { return past })

		expired, err := stale.Issue(account.AsIdentity())
		require.NoError(t, err)

		req := upgradeRequest()
		req.Header.Set(fiber.HeaderCookie, sochx.SessionCookieName+"="+expired)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("accepts the session cookie from the raw header", func(t *testing.T) {
		req := upgradeRequest()
		req.Header.Set(fiber.HeaderCookie, sochx.SessionCookieName+"="+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, account.ID.String(), string(body))
	})

	t.Run("falls back to the bearer header", func(t *testing.T) {
		req := upgradeRequest()
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestHub_ConcurrentJoinEmitLeave(t *testing.T) {
	hub := sochx.NewHub(noopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := hub.Join(sochx.UserGroup("shared"))
			hub.Emit(sochx.UserGroup("shared"), "notification", "burst")
			hub.Leave(s)
		}()
	}
	wg.Wait()

	assert.Zero(t, hub.GroupSize(sochx.UserGroup("shared")))
}
