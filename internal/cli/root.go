package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	linkpreview "github.com/rohmanhakim/link-preview"
	"github.com/rohmanhakim/link-preview/internal/build"
)

var (
	cfgFile           string
	width             int
	height            int
	maxRequests       int
	timeout           time.Duration
	userAgent         string
	ignoreOGVideoHTML bool
	property          string
	verbose           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "link-preview <url>",
	Short: "Resolve link-preview metadata for a URL.",
	Long: `link-preview fetches just enough of a URL (oEmbed endpoint, OpenGraph
tags, HTML fallbacks, the preview image) to resolve the metadata a link
preview needs, and prints the result as an oEmbed-shaped JSON object.

Fetching is lazy and bounded: each property only crawls as far as it
must, every URI is fetched at most once, and the whole session stays
under a fixed request ceiling.`,
	Args:    cobra.ExactArgs(1),
	Version: build.FullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := InitConfig()
		client := linkpreview.New(cfg)

		content, err := client.Fetch(context.Background(), args[0], linkpreview.Options{
			Width:  width,
			Height: height,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		if property != "" {
			value, err := propertyValue(content, property)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
				os.Exit(1)
			}
			fmt.Println(value)
			return
		}

		if !content.Found() {
			fmt.Fprintf(os.Stderr, "Error: no fetch for %s succeeded\n", args[0])
			os.Exit(1)
		}
		rendered, err := json.MarshalIndent(content.AsOEmbed(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(rendered))
	},
}

func propertyValue(content *linkpreview.Content, property string) (string, error) {
	accessors := map[string]func() string{
		"url":                content.URL,
		"title":              content.Title,
		"description":        content.Description,
		"site_name":          content.SiteName,
		"site_url":           content.SiteURL,
		"image_url":          content.ImageURL,
		"image_content_type": content.ImageContentType,
		"image_file_name":    content.ImageFileName,
		"content_url":        content.ContentURL,
		"content_type":       content.ContentType,
		"content_width":      func() string { return fmt.Sprintf("%d", content.ContentWidth()) },
		"content_height":     func() string { return fmt.Sprintf("%d", content.ContentHeight()) },
	}
	accessor, ok := accessors[property]
	if !ok {
		return "", fmt.Errorf("unknown property %q", property)
	}
	return accessor(), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().IntVar(&width, "width", 0, "target embed width in pixels")
	rootCmd.PersistentFlags().IntVar(&height, "height", 0, "target embed height in pixels")
	rootCmd.PersistentFlags().IntVar(&maxRequests, "max-requests", 0, "maximum fetches per resolution session")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().BoolVar(&ignoreOGVideoHTML, "ignore-og-video-html", false, "skip the nested fetch of HTML-typed OpenGraph video groups")
	rootCmd.PersistentFlags().StringVar(&property, "property", "", "print a single property (e.g. title) instead of the oEmbed JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log fetch and parse events to stderr")
}

// InitConfig builds the client configuration from the config file when
// given, else from CLI flags over defaults.
func InitConfig() linkpreview.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError is InitConfig returning errors instead of exiting.
// This makes it easier to test error cases.
func InitConfigWithError() (linkpreview.Config, error) {
	if cfgFile != "" {
		cfg, err := linkpreview.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	builder := linkpreview.WithDefault()
	if maxRequests > 0 {
		builder = builder.WithMaxRequests(maxRequests)
	}
	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if ignoreOGVideoHTML {
		builder = builder.WithIgnoreOpenGraphVideoHTML(true)
	}
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			builder = builder.WithLogger(logger)
		}
	}
	return builder.Build()
}
