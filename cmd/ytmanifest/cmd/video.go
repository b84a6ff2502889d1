package cmd

import (
	"github.com/spf13/cobra"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/extractor"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/language"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/render"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/service"
)

var videoOpts struct {
	captions bool
	exclude  []string
	fps      int
	out      string
	baseURL  string
}

var videoCmd = &cobra.Command{
	Use:   "video URL",
	Short: "Resolve a URL and write its manifest",
	Long: `Resolve a media URL into a playable video. Sources that already carry a
manifest are passed through; otherwise a DASH manifest or HLS master playlist
is written to the output directory and its URL is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(videoOpts.out, videoOpts.baseURL)
		if err != nil {
			return err
		}

		video, err := svc.Video(cmd.Context(), args[0], service.VideoOptions{
			Captions: videoOpts.captions,
			Exclude:  videoOpts.exclude,
			FPS:      videoOpts.fps,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), video)
	},
}

func init() {
	flags := videoCmd.Flags()
	flags.BoolVar(&videoOpts.captions, "captions", false, "fall back to automatic captions when there are no subtitles")
	flags.StringSliceVar(&videoOpts.exclude, "exclude", nil, "codec prefixes to leave out (overrides settings)")
	flags.IntVar(&videoOpts.fps, "fps", 0, "frame-rate cap (overrides settings)")
	flags.StringVarP(&videoOpts.out, "out", "o", ".", "directory manifests are written to")
	flags.StringVar(&videoOpts.baseURL, "base-url", "", "URL the output directory is served from (default file://)")
	rootCmd.AddCommand(videoCmd)
}

// newService builds a service that writes manifests into dir
func newService(dir, baseURL string) (*service.Service, error) {
	store, err := render.NewFileStore(dir, baseURL)
	if err != nil {
		return nil, err
	}

	renderer := render.NewRenderer(store, logger.WithComponent("render").Zerolog())
	settings := config.NewHolder(cfg.Settings, "", logger)

	return service.New(
		newExtractor(),
		renderer,
		settings,
		language.NewNamer(cfg.Manifest.DisplayLanguage),
		service.WithLogger(logger),
		service.WithExtractOptions(extractor.Options{
			Cookies:       cfg.Extractor.Cookies,
			NoPlaylist:    cfg.Extractor.NoPlaylist,
			ExtractorArgs: cfg.Extractor.ExtractorArgs,
		}),
	), nil
}

func newExtractor() *extractor.Extractor {
	return extractor.NewExtractor(cfg.Extractor.Path, cfg.Extractor.Timeout, cfg.Extractor.ExtraArgs...)
}
