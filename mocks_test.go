package auth_test

import (
	"context"
	"database/sql"
	"io"
	"mime/multipart"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	auth "github.com/soukhq/souk-auth"
)

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// nopLogger swallows everything; for tests that do not assert on logging
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg auth.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockImageStore implements auth.ImageStore
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, data string, folder string) (*auth.Image, error) {
	args := m.Called(ctx, data, folder)
	if img := args.Get(0); img != nil {
		return img.(*auth.Image), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubCustomers is an in-memory auth.Customers covering the uuid-typed
// lookups the auth flows use. Methods inherited from the embedded nil
// repository panic when reached; tests should never reach them.
type stubCustomers struct {
	repository.Repository[*auth.Customer]
	records     map[string]*auth.Customer
	registerErr error
}

func newStubCustomers(records ...*auth.Customer) *stubCustomers {
	s := &stubCustomers{records: map[string]*auth.Customer{}}
	for _, record := range records {
		s.records[record.Email] = record
	}
	return s
}

func (s *stubCustomers) GetByEmail(ctx context.Context, email string) (*auth.Customer, error) {
	if record, ok := s.records[email]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubCustomers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.Customer, error) {
	return s.GetByEmail(ctx, email)
}

func (s *stubCustomers) FindByID(ctx context.Context, id uuid.UUID) (*auth.Customer, error) {
	for _, record := range s.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubCustomers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*auth.Customer, error) {
	return s.FindByID(ctx, id)
}

func (s *stubCustomers) Register(ctx context.Context, record *auth.Customer) (*auth.Customer, error) {
	return s.RegisterTx(ctx, nil, record)
}

func (s *stubCustomers) RegisterTx(ctx context.Context, tx bun.IDB, record *auth.Customer) (*auth.Customer, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = auth.RoleUser
	}
	s.records[record.Email] = record
	return record, nil
}

func (s *stubCustomers) ListAll(ctx context.Context) ([]*auth.Customer, error) {
	out := make([]*auth.Customer, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *stubCustomers) RemoveAddress(ctx context.Context, id, addressID uuid.UUID) (*auth.Customer, error) {
	record, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := make([]auth.Address, 0, len(record.Addresses))
	for _, addr := range record.Addresses {
		if addr.ID != addressID {
			kept = append(kept, addr)
		}
	}
	record.Addresses = kept
	return record, nil
}

// stubSellers is an in-memory auth.Sellers
type stubSellers struct {
	repository.Repository[*auth.Seller]
	records     map[string]*auth.Seller
	registerErr error
}

func newStubSellers(records ...*auth.Seller) *stubSellers {
	s := &stubSellers{records: map[string]*auth.Seller{}}
	for _, record := range records {
		s.records[record.Email] = record
	}
	return s
}

func (s *stubSellers) GetByEmail(ctx context.Context, email string) (*auth.Seller, error) {
	if record, ok := s.records[email]; ok {
		return record, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubSellers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.Seller, error) {
	return s.GetByEmail(ctx, email)
}

func (s *stubSellers) FindByID(ctx context.Context, id uuid.UUID) (*auth.Seller, error) {
	for _, record := range s.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubSellers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*auth.Seller, error) {
	return s.FindByID(ctx, id)
}

func (s *stubSellers) Register(ctx context.Context, record *auth.Seller) (*auth.Seller, error) {
	return s.RegisterTx(ctx, nil, record)
}

func (s *stubSellers) RegisterTx(ctx context.Context, tx bun.IDB, record *auth.Seller) (*auth.Seller, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.records[record.Email] = record
	return record, nil
}

// stubRepo wires the two stub stores into an auth.RepositoryManager
type stubRepo struct {
	customers *stubCustomers
	sellers   *stubSellers
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		customers: newStubCustomers(),
		sellers:   newStubSellers(),
	}
}

func (r *stubRepo) Validate() error { return nil }
func (r *stubRepo) MustValidate()   {}

func (r *stubRepo) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (r *stubRepo) Customers() auth.Customers { return r.customers }
func (r *stubRepo) Sellers() auth.Sellers     { return r.sellers }

func testConfig() *auth.Config {
	return &auth.Config{
		ActivationSecret:      "activation-secret-0123456789",
		CustomerSessionSecret: "customer-secret-0123456789",
		SellerSessionSecret:   "seller-secret-0123456789",
		ActivationBaseURL:     "https://souk.test/activation",
	}
}

func mustAuthenticator(repo auth.RepositoryManager) *auth.Authenticator {
	auther, err := auth.New(repo, testConfig())
	if err != nil {
		panic(err)
	}
	return auther.WithLogger(nopLogger{})
}

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) QueryValues(name string) []string { return nil }

func (m *MockContext) LocalsMerge(key any, value map[string]any) map[string]any { return value }

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *MockContext) IP() string { return "" }

func (m *MockContext) SendStatus(code int) error { return nil }

func (m *MockContext) SendStream(r io.Reader) error { return nil }

func (m *MockContext) RouteName() string { return "" }

func (m *MockContext) RouteParams() map[string]string { return map[string]string{} }
