package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ByLCY/docflow/binding"
	"github.com/ByLCY/docflow/config"
	"github.com/ByLCY/docflow/convert"
	canvasrenderer "github.com/ByLCY/docflow/renderer/canvas"
)

var (
	convertType   string
	convertOut    string
	convertData   string
	convertTrace  bool
	convertUnique bool
	convertStrict bool
	convertJobs   int
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Convert documents to PDF",
	Long: `Convert one or more documents to PDF. The conversion is chosen from each
file's extension unless --type is given (see "docflow types").`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertType, "type", "t", "", "conversion type for all inputs, e.g. DOCX_TO_PDF")
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output directory (default: next to each source, or output.dir)")
	convertCmd.Flags().StringVar(&convertData, "data", "", "JSON or YAML file bound to ${path} placeholders")
	convertCmd.Flags().BoolVar(&convertStrict, "strict", false, "fail when a ${path} placeholder has no value in --data")
	convertCmd.Flags().BoolVar(&convertTrace, "trace", false, "write <output>.trace.json with the renderer call sequence")
	convertCmd.Flags().BoolVar(&convertUnique, "unique", false, "never overwrite: append -1, -2, ... to taken output names")
	convertCmd.Flags().IntVarP(&convertJobs, "jobs", "j", 0, "number of files converted in parallel (default output.jobs)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts, err := cfg.LayoutOptions()
	if err != nil {
		return err
	}

	var t convert.ConversionType
	if convertType != "" {
		if t, err = convert.ParseType(convertType); err != nil {
			return err
		}
	}

	options := []convert.Option{
		convert.WithLogger(log),
		convert.WithTrace(convertTrace),
		convert.WithUnique(cfg.Output.Unique),
	}
	if cmd.Flags().Changed("unique") {
		options = append(options, convert.WithUnique(convertUnique))
	}
	if convertData != "" {
		data, err := binding.Load(convertData)
		if err != nil {
			return err
		}
		options = append(options, convert.WithData(data), convert.WithStrictBinding(convertStrict))
	}
	svc := convert.NewService(opts, canvasrenderer.Factory(cfg.RendererOptions()), options...)

	outDir := cfg.Output.Dir
	if convertOut != "" {
		outDir = convertOut
	}
	jobs := cfg.Output.Jobs
	if convertJobs > 0 {
		jobs = convertJobs
	}

	batch := make([]convert.Job, len(args))
	for i, path := range args {
		batch[i] = convert.Job{Path: path, Type: t}
	}
	results, err := svc.ConvertAll(cmd.Context(), batch, outDir, jobs)
	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s（%d 页）\n", res.Output, res.Summary.Pages)
		if res.Trace != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "调试输出：%s\n", res.Trace)
		}
	}
	if err != nil {
		log.Debug("conversion failed", zap.Error(err))
		return err
	}
	return nil
}
