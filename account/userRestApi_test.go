package account_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"

	"caster/account"
	"caster/authz"
	"caster/bizerror"
	"caster/session"
	"caster/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UserRestApi", func() {
	var router *gin.Engine

	BeforeEach(func() {
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersRestAPI(router)

		authz.GuardFunc = func(c *gin.Context, allowAnonymous bool) (*session.Session, error) {
			return testinfra.BuildSession(1, "ann", 0, nil), nil
		}
	})

	Describe("handleSignupUser", func() {
		It("should return 201 when signup successful", func() {
			account.SignupUserFunc = func(s account.UserSignup) (*account.UserInfo, error) {
				return &account.UserInfo{ID: 123, Username: s.Username, Active: true}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users",
				bytes.NewReader([]byte(`{"username":"ann","secret":"123456"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id":"123","username":"ann","active":true}`))
		})

		It("should return 400 when validation failed", func() {
			var invoked bool
			account.SignupUserFunc = func(s account.UserSignup) (*account.UserInfo, error) {
				invoked = true
				return nil, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/v1/users",
				bytes.NewReader([]byte(`{"username":"ann","secret":"123"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{
				"code":"common.bad_param",
				"message":"Key: 'UserSignup.Secret' Error:Field validation for 'Secret' failed on the 'gte' tag",
				"data":null}`))
			Expect(invoked).To(BeFalse())
		})
	})

	Describe("handleDetailUser", func() {
		It("should return 200 with the user info", func() {
			account.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.UserInfo, error) {
				Expect(id).To(Equal(types.ID(123)))
				Expect(sec.Identity.Name).To(Equal("ann"))
				return &account.UserInfo{ID: id, Username: "ann", Active: true}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users/123", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"id":"123","username":"ann","active":true}`))
		})

		It("should return 400 on a malformed id", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/abc", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'abc'","data":null}`))
		})

		It("should return 403 when the service forbids", func() {
			account.DetailUserFunc = func(id types.ID, sec *session.Session) (*account.UserInfo, error) {
				return nil, bizerror.ErrForbidden
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users/123", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
		})
	})

	Describe("guarded routes", func() {
		It("should return 401 when the guard rejects", func() {
			authz.GuardFunc = func(c *gin.Context, allowAnonymous bool) (*session.Session, error) {
				return nil, bizerror.ErrUnauthenticated
			}

			req := httptest.NewRequest(http.MethodGet, "/v1/users/123", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusUnauthorized))
			Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
		})
	})
})
