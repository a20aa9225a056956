package http_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	adapter "entitycore/src/adapters/http"
	"entitycore/src/domain/model"
	"entitycore/src/domain/users"
	"entitycore/src/infra/sqlite"
	"entitycore/src/repositories"
	"entitycore/src/test_artefacts/stubs"
	"entitycore/src/test_artefacts/test_seeder"
)

var _ = Describe("Users handlers", func() {
	var (
		ctx        context.Context
		db         *sql.DB
		testSeeder test_seeder.TestSeeder
		emitter    *stubs.EmitterStub
		handler    http.Handler
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = sqlite.Open(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
		testSeeder = test_seeder.New(db)
		testSeeder.CreateSchema(ctx)

		emitter = stubs.NewEmitterStub()
		userType := users.NewType(model.Config{Backend: repositories.NewSQLBackend(db), Emitter: emitter})
		handler = adapter.NewServer(discardLogger(), 0, userType).Handler()
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	Context("POST /v1/users", func() {
		It("creates the user and hides the password", func() {
			rec := do(http.MethodPost, "/v1/users", `{"name":"Ana","email":"ana@example.com","age":30,"password":"s3cret","address":{"city":"Lisbon"}}`)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("name", "Ana"))
			Expect(body).To(HaveKey("id"))
			Expect(body).To(HaveKey("created_at"))
			Expect(body).NotTo(HaveKey("password"))

			row := testSeeder.SelectUser(ctx, int64(body["id"].(float64)))
			Expect(row.Password.String).To(HavePrefix("$2"))
			Expect(row.Address.String).To(MatchJSON(`{"city":"Lisbon"}`))
			Expect(emitter.Topics()).To(Equal([]string{"user.created"}))
		})

		It("ignores a client supplied id", func() {
			rec := do(http.MethodPost, "/v1/users", `{"id":99,"name":"Ana"}`)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(decode(rec)["id"]).To(BeNumerically("==", 1))
		})

		It("never stores a client supplied hash verbatim", func() {
			hash := "$2a$04$abcdefghijklmnopqrstuuM0rQ5lXKz3Jmg1mY9sYx7Zc4pL5b8jG"

			rec := do(http.MethodPost, "/v1/users", fmt.Sprintf(`{"name":"Ana","password":%q}`, hash))

			Expect(rec.Code).To(Equal(http.StatusCreated))
			row := testSeeder.SelectUser(ctx, int64(decode(rec)["id"].(float64)))
			Expect(row.Password.String).NotTo(Equal(hash))
		})

		It("rejects invalid bodies", func() {
			rec := do(http.MethodPost, "/v1/users", `{"name":`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(testSeeder.CountRows(ctx, "users")).To(Equal(0))
		})

		It("rejects an empty password", func() {
			rec := do(http.MethodPost, "/v1/users", `{"name":"Ana","password":""}`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("hides storage errors", func() {
			rec := do(http.MethodPost, "/v1/users", `{"nickname":"ana"}`)

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).NotTo(ContainSubstring("nickname"))
		})
	})

	Context("GET /v1/users/{id}", func() {
		It("returns the stored user", func() {
			id := testSeeder.InsertUser(ctx, "John", "john@example.com", 40)

			rec := do(http.MethodGet, fmt.Sprintf("/v1/users/%d", id), "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("email", "john@example.com"))
			Expect(body).To(HaveKeyWithValue("age", BeNumerically("==", 40)))
		})

		It("returns 404 for unknown users", func() {
			Expect(do(http.MethodGet, "/v1/users/404", "").Code).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for malformed ids", func() {
			Expect(do(http.MethodGet, "/v1/users/abc", "").Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("PATCH /v1/users/{id}", func() {
		It("writes the changed fields and hashes a new password", func() {
			id := testSeeder.InsertUser(ctx, "John", "john@example.com", 40)

			rec := do(http.MethodPatch, fmt.Sprintf("/v1/users/%d", id), `{"age":41,"password":"n3w"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKey("updated_at"))
			row := testSeeder.SelectUser(ctx, id)
			Expect(row.Age.Int64).To(Equal(int64(41)))
			Expect(row.Password.String).To(HavePrefix("$2"))
			Expect(emitter.Topics()).To(Equal([]string{"user.updated"}))
		})

		It("does not write or emit when nothing changed", func() {
			id := testSeeder.InsertUser(ctx, "John", "john@example.com", 40)

			rec := do(http.MethodPatch, fmt.Sprintf("/v1/users/%d", id), `{"age":40,"name":"John"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(testSeeder.SelectUser(ctx, id).UpdatedAt.Valid).To(BeFalse())
			Expect(emitter.Topics()).To(BeEmpty())
		})

		It("returns 404 for unknown users", func() {
			Expect(do(http.MethodPatch, "/v1/users/404", `{"age":1}`).Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("DELETE /v1/users/{id}", func() {
		It("removes the row", func() {
			id := testSeeder.InsertUser(ctx, "John", "john@example.com", 40)

			rec := do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", id), "")

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(testSeeder.SelectUser(ctx, id)).To(BeNil())
			Expect(emitter.Topics()).To(Equal([]string{"user.deleted"}))
		})

		It("returns 404 for unknown users", func() {
			Expect(do(http.MethodDelete, "/v1/users/404", "").Code).To(Equal(http.StatusNotFound))
		})
	})

	It("maps unexpected errors to 500", func() {
		backend := stubs.NewBackendStub().WithError(errors.New("connection refused"))
		userType := users.NewType(model.Config{Backend: backend})
		handler = adapter.NewServer(discardLogger(), 0, userType).Handler()

		rec := do(http.MethodGet, "/v1/users/1", "")

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("connection refused"))
	})

	It("maps unique violations to 409", func() {
		backend := stubs.NewBackendStub().WithError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
		userType := users.NewType(model.Config{Backend: backend})
		handler = adapter.NewServer(discardLogger(), 0, userType).Handler()

		rec := do(http.MethodPost, "/v1/users", `{"email":"ana@example.com"}`)

		Expect(rec.Code).To(Equal(http.StatusConflict))
	})
})
