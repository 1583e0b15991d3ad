package cmd

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/nexply/Auto-play/config"
	"github.com/nexply/Auto-play/keysend"
	"github.com/nexply/Auto-play/model"
	"github.com/nexply/Auto-play/transport"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP control surface",
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

// servePlayer is package-level so the handlers (and the e2e test) share
// one transport.
var servePlayer *transport.Player

type playRequest struct {
	Path     string  `json:"path"`
	Track    *int    `json:"track,omitempty"`
	Preview  bool    `json:"preview"`
	Original bool    `json:"original"`
	Speed    float64 `json:"speed,omitempty"`

	Weights       *model.Weights       `json:"weights,omitempty"`
	OctaveWeights *model.OctaveWeights `json:"octave_weights,omitempty"`
}

func HandlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	opts := []transport.PlayOption{}
	if req.Track != nil {
		opts = append(opts, transport.WithTrack(*req.Track))
	}
	if req.Preview {
		opts = append(opts, transport.WithPreview(req.Original))
	}
	if req.Speed > 0 {
		opts = append(opts, transport.WithSpeed(req.Speed))
	}
	if req.Weights != nil {
		opts = append(opts, transport.WithWeights(*req.Weights))
	}
	if req.OctaveWeights != nil {
		opts = append(opts, transport.WithOctaveWeights(*req.OctaveWeights))
	}

	if err := servePlayer.Play(req.Path, opts...); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	json.NewEncoder(w).Encode(servePlayer.Status())
}

func HandlePause(w http.ResponseWriter, r *http.Request) {
	if err := servePlayer.TogglePause(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	json.NewEncoder(w).Encode(servePlayer.Status())
}

type seekRequest struct {
	Seconds float64 `json:"seconds"`
}

func HandleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := servePlayer.Seek(req.Seconds); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	json.NewEncoder(w).Encode(servePlayer.Status())
}

func HandleStop(w http.ResponseWriter, r *http.Request) {
	servePlayer.Stop()
	json.NewEncoder(w).Encode(servePlayer.Status())
}

func HandleStatus(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(servePlayer.Status())
}

// NewRouter builds the control API. Split out so tests can hit it with
// httptest.
func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/play", HandlePlay).Methods("POST")
	router.HandleFunc("/pause", HandlePause).Methods("POST")
	router.HandleFunc("/seek", HandleSeek).Methods("POST")
	router.HandleFunc("/stop", HandleStop).Methods("POST")
	router.HandleFunc("/status", HandleStatus).Methods("GET")
	return cors.Default().Handler(router)
}

// InitPlayer builds the shared transport behind the handlers. serve()
// calls it on startup; the e2e tests call it directly.
func InitPlayer(opts ...transport.Option) {
	servePlayer = transport.NewPlayer(activeKeymap(), keysend.NewConsole(), opts...)
}

func serve() {
	appCfg := config.Load(config.Path())
	InitPlayer(
		transport.WithPollInterval(time.Duration(appCfg.WindowCheckInterval*float64(time.Second))),
		transport.WithKeyCooldown(time.Duration(appCfg.KeyCooldown*float64(time.Second))),
	)
	log.Fatal(http.ListenAndServe(serveAddr, NewRouter()))
}
