package testutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// FakeAPI is an HTTP server speaking the task service contract:
//
//	POST   /auth/login     {username, password}        -> {token, user}
//	POST   /auth/register  {username, email, password} -> {token, user}
//	GET    /tasks                                      -> [task]
//	POST   /tasks          {title, description, status, due_date} -> task
//	PUT    /tasks/:id      {same fields}               -> task
//	DELETE /tasks/:id                                  -> 204
//
// Tokens are HS256 JWTs; task ids are JSON numbers.
type FakeAPI struct {
	Server *httptest.Server

	secret []byte

	mu       sync.Mutex
	users    map[string]apiUser // username -> user
	tasks    map[int][]apiTask  // user id -> tasks
	nextID   int
	failures map[string]int // "METHOD /path" -> status code
	requests []string
	authHdrs []string
}

type apiUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	password string
}

type apiTask struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
}

type apiTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"due_date"`
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		secret:   []byte("test-secret"),
		users:    make(map[string]apiUser),
		tasks:    make(map[int][]apiTask),
		nextID:   1,
		failures: make(map[string]int),
	}

	r := gin.New()
	r.Use(f.record, f.inject)

	auth := r.Group("/auth")
	auth.POST("/login", f.login)
	auth.POST("/register", f.register)

	tasks := r.Group("/tasks", f.requireToken)
	tasks.GET("", f.listTasks)
	tasks.POST("", f.createTask)
	tasks.PUT("/:id", f.updateTask)
	tasks.DELETE("/:id", f.deleteTask)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL to configure clients with.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// AddUser creates an account.
func (f *FakeAPI) AddUser(username, password string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := len(f.users) + 1
	f.users[username] = apiUser{ID: id, Username: username, password: password}
	return id
}

// AddTask stores a task for userID and returns its id.
func (f *FakeAPI) AddTask(userID int, title, status, due string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := apiTask{ID: f.nextID, Title: title, Status: status}
	if due != "" {
		t.DueDate = &due
	}
	f.nextID++
	f.tasks[userID] = append(f.tasks[userID], t)
	return t.ID
}

// TaskCount returns how many tasks userID has on the server.
func (f *FakeAPI) TaskCount(userID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks[userID])
}

// Token signs a token for userID valid for ttl (negative for an expired one).
func (f *FakeAPI) Token(userID int, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		panic(err)
	}
	return s
}

// Fail makes every request matching "METHOD /path" answer with code.
// The path is the route pattern, e.g. "DELETE /tasks/:id".
func (f *FakeAPI) Fail(route string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[route] = code
}

// Requests returns "METHOD /path" for every request received.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// AuthHeaders returns the Authorization header of every request received.
func (f *FakeAPI) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHdrs...)
}

func (f *FakeAPI) record(c *gin.Context) {
	f.mu.Lock()
	f.requests = append(f.requests, c.Request.Method+" "+c.Request.URL.Path)
	f.authHdrs = append(f.authHdrs, c.GetHeader("Authorization"))
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) inject(c *gin.Context) {
	f.mu.Lock()
	code, ok := f.failures[c.Request.Method+" "+c.FullPath()]
	f.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(code, gin.H{"message": "injected failure"})
		return
	}
	c.Next()
}

func (f *FakeAPI) requireToken(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return f.secret, nil
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid subject"})
		return
	}
	c.Set("user_id", id)
	c.Next()
}

func (f *FakeAPI) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	f.mu.Lock()
	u, ok := f.users[req.Username]
	f.mu.Unlock()
	if !ok || u.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": f.Token(u.ID, time.Hour), "user": u})
}

func (f *FakeAPI) register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	f.mu.Lock()
	if _, exists := f.users[req.Username]; exists {
		f.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	u := apiUser{ID: len(f.users) + 1, Username: req.Username, Email: req.Email, password: req.Password}
	f.users[req.Username] = u
	f.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"token": f.Token(u.ID, time.Hour), "user": u})
}

func (f *FakeAPI) listTasks(c *gin.Context) {
	uid := c.GetInt("user_id")
	f.mu.Lock()
	out := append([]apiTask{}, f.tasks[uid]...)
	f.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (f *FakeAPI) createTask(c *gin.Context) {
	uid := c.GetInt("user_id")
	var in apiTaskInput
	if err := c.ShouldBindJSON(&in); err != nil || strings.TrimSpace(in.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}
	f.mu.Lock()
	t := apiTask{ID: f.nextID, Title: in.Title, Description: in.Description, Status: in.Status}
	if t.Status == "" {
		t.Status = "pending"
	}
	if in.DueDate != "" {
		due := in.DueDate
		t.DueDate = &due
	}
	f.nextID++
	f.tasks[uid] = append(f.tasks[uid], t)
	f.mu.Unlock()
	c.JSON(http.StatusCreated, t)
}

func (f *FakeAPI) updateTask(c *gin.Context) {
	uid := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}
	var in apiTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks[uid] {
		if t.ID == id {
			t.Title, t.Description, t.Status = in.Title, in.Description, in.Status
			t.DueDate = nil
			if in.DueDate != "" {
				due := in.DueDate
				t.DueDate = &due
			}
			f.tasks[uid][i] = t
			c.JSON(http.StatusOK, t)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
}

func (f *FakeAPI) deleteTask(c *gin.Context) {
	uid := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.tasks[uid]
	for i, t := range tasks {
		if t.ID == id {
			f.tasks[uid] = append(tasks[:i], tasks[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
}
