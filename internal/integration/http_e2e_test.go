//go:build integration

package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"dineline_reviews/internal/adapters/dineline"
	server "dineline_reviews/internal/adapters/http_server"
	redisad "dineline_reviews/internal/adapters/redis"
	"dineline_reviews/internal/adapters/yelp"
	"dineline_reviews/internal/app"
	"dineline_reviews/internal/domain"
	mysqlrepo "dineline_reviews/internal/storage/mysql"
)

// ---------- helpers ----------

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = filepath.Join("..", "..", "migrations")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=dineline"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/dineline?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

const seedSQL = `
INSERT INTO auth_user (id, username) VALUES (1, 'bob');
INSERT INTO user_profile (user_id, photo) VALUES (1, NULL);
INSERT INTO restaurant (id, restaurant_name, business_id) VALUES (10, 'Pasta Place', 'pasta-place-nyc');
INSERT INTO review (id, restaurant_id, user_id, rating, ` + "`time`" + `, content, image1, hidden)
VALUES (100, 10, 1, 4, '2021-05-01 10:00:00', 'step-free entrance', 'review/a.jpg', FALSE);
`

// ---------- the test ----------

func TestHTTP_EndToEnd_RestaurantReviews(t *testing.T) {
	db := startMySQL(t)
	if _, err := db.Exec(seedSQL); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Yelp stub
	var yelpCalls atomic.Int32
	yelpSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		yelpCalls.Add(1)
		if r.URL.Path != "/businesses/pasta-place-nyc/reviews" || r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reviews":[{"id":"y1","url":"https://yelp.example/y1","rating":3,
			"time_created":"2021-05-01 10:00:00","text":"Nice","user":{"name":"Alice","image_url":null}}]}`))
	}))
	t.Cleanup(yelpSrv.Close)

	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "dineline:")

	yc, err := yelp.New(yelpSrv.URL, "test-key", 50)
	if err != nil {
		t.Fatalf("yelp.New: %v", err)
	}

	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Feed:       app.NewFeedService(mysqlrepo.New(db), yc, cache, time.Minute),
		Normalizer: app.NewNormalizer("https://media.example/", nil),
		Actions:    dineline.New("http://127.0.0.1:1", time.Second),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	// JSON view models
	for i := 0; i < 2; i++ {
		res, err := http.Get(ts.URL + "/v1/restaurants/10/reviews")
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		var body struct {
			External []domain.ViewModel `json:"external"`
			Internal []domain.ViewModel `json:"internal"`
		}
		err = json.NewDecoder(res.Body).Decode(&body)
		res.Body.Close()
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.StatusCode != http.StatusOK || len(body.External) != 1 || len(body.Internal) != 1 {
			t.Fatalf("status %d body %+v", res.StatusCode, body)
		}
		ext, in := body.External[0], body.Internal[0]
		if ext.UserName == nil || *ext.UserName != "Alice" || ext.Time != "2021-05-01 10:00:00" || ext.UserID != nil {
			t.Fatalf("unexpected external: %+v", ext)
		}
		if in.ID == nil || *in.ID != 100 || in.Image1 == nil || *in.Image1 != "https://media.example/review/a.jpg" {
			t.Fatalf("unexpected internal: %+v", in)
		}
	}
	if yelpCalls.Load() != 1 {
		t.Fatalf("second load should come from cache, yelp calls = %d", yelpCalls.Load())
	}

	// HTML page
	res, err := http.Get(ts.URL + "/restaurant/profile/10/reviews")
	if err != nil {
		t.Fatalf("GET page: %v", err)
	}
	pageBytes, _ := io.ReadAll(res.Body)
	res.Body.Close()
	page := string(pageBytes)
	if res.StatusCode != http.StatusOK || !strings.Contains(page, "step-free entrance") || !strings.Contains(page, "Alice") {
		t.Fatalf("unexpected page (%d): %s", res.StatusCode, page)
	}

	// like against an unreachable backend leaves the count alone
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/restaurant/profile/10/reviews/100/card/like", nil)
	res2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST like: %v", err)
	}
	likeBytes, _ := io.ReadAll(res2.Body)
	res2.Body.Close()
	if res2.StatusCode != http.StatusOK || !strings.Contains(string(likeBytes), `likes-count">0<`) {
		t.Fatalf("unexpected like response (%d): %s", res2.StatusCode, likeBytes)
	}
}
