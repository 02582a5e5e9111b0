package cmd

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ksfraser/WealthSystem-sub002/api/handlers"
	"github.com/ksfraser/WealthSystem-sub002/api/middleware"
	services "github.com/ksfraser/WealthSystem-sub002/api/services"
	awsclient "github.com/ksfraser/WealthSystem-sub002/internal/aws"
	"github.com/ksfraser/WealthSystem-sub002/internal/mailer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()

		if appCfg.Auth.SessionSecret == "" {
			log.Fatal().Msg("auth.sessionSecret must be configured")
		}

		// Flags win over the config file when set explicitly.
		if !cmd.Flags().Changed("host") {
			host = appCfg.Server.Host
		}
		if !cmd.Flags().Changed("port") {
			port = appCfg.Server.Port
		}

		service := &services.Service{
			Config: appCfg,
			DB:     portalDB,
			Mailer: initializeMailer(),
		}

		// Create routes
		r := mux.NewRouter()

		api := r.PathPrefix(appCfg.Server.BasePath).Subrouter()
		api.Use(middleware.WithLogger)

		// Public routes: login and the invitation accept flow
		api.HandleFunc("/auth/login", handlers.Login(service)).Methods(http.MethodPost)
		api.HandleFunc("/invitations/{token}", handlers.GetInvitation(service)).Methods(http.MethodGet)
		api.HandleFunc("/invitations/{token}/accept", handlers.AcceptInvitation(service)).Methods(http.MethodPost)

		// Authenticated routes
		authed := api.NewRoute().Subrouter()
		authed.Use(middleware.JWTMiddleware([]byte(appCfg.Auth.SessionSecret), portalDB))

		authed.HandleFunc("/auth/logout", handlers.Logout(service)).Methods(http.MethodPost)
		authed.HandleFunc("/auth/session", handlers.CurrentUser(service)).Methods(http.MethodGet)
		authed.HandleFunc("/auth/flash", handlers.PopFlash(service)).Methods(http.MethodGet)

		authed.HandleFunc("/users", handlers.ListUsers(service)).Methods(http.MethodGet)
		authed.HandleFunc("/users/me", handlers.UpdateProfile(service)).Methods(http.MethodPut)

		authed.HandleFunc("/invitations", handlers.CreateInvitation(service)).Methods(http.MethodPost)
		authed.HandleFunc("/invitations", handlers.ListInvitations(service)).Methods(http.MethodGet)

		authed.HandleFunc("/portfolio", handlers.ListPositions(service)).Methods(http.MethodGet)
		authed.HandleFunc("/portfolio", handlers.UpsertPosition(service)).Methods(http.MethodPut)
		authed.HandleFunc("/trades", handlers.ListTrades(service)).Methods(http.MethodGet)
		authed.HandleFunc("/trades", handlers.InsertTrade(service)).Methods(http.MethodPost)
		authed.HandleFunc("/prices/{symbol}", handlers.GetHistoricalPrices(service)).Methods(http.MethodGet)

		authed.HandleFunc("/diagnostics/health", handlers.Health(service)).Methods(http.MethodGet)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			r); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

// initializeMailer returns the SES mailer when a source address is
// configured, otherwise a no-op mailer for development.
func initializeMailer() mailer.Mailer {
	if appCfg.AWS.SourceEmail == "" {
		log.Warn().Msg("aws.sourceEmail not configured, invitation email disabled")
		return mailer.NopMailer{}
	}

	awsCfg, err := awsclient.LoadAWSConfig(appCfg.AWS.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	return &mailer.SESMailer{
		Client: awsclient.NewSESClient(awsCfg),
		Source: appCfg.AWS.SourceEmail,
	}
}
