package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lad94220/ML-Lab1/pkg/config"
	"github.com/lad94220/ML-Lab1/pkg/logging"
	"github.com/lad94220/ML-Lab1/pkg/model"
	"github.com/lad94220/ML-Lab1/pkg/trainer"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	data := flag.String("data", "", "cleaned CSV to train on (default: dataset.path)")
	out := flag.String("out", "", "artifact output path (default: model.path)")
	raw := flag.String("raw", "", "raw labelled CSV to clean before training")
	cleanOut := flag.String("clean-out", "", "where -raw writes the cleaned CSV (default: dataset.path)")
	prepare := flag.Bool("prepare", false, "clean dataset.raw_path first (same as -raw with the configured path)")
	printOnly := flag.Bool("print", false, "print the coefficients of the artifact at -out and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	if *data == "" {
		*data = cfg.Dataset.Path
	}
	if *out == "" {
		*out = cfg.Model.Path
	}
	if *prepare && *raw == "" {
		*raw = cfg.Dataset.RawPath
	}
	if *cleanOut == "" {
		*cleanOut = cfg.Dataset.Path
	}

	if *printOnly {
		if err := printArtifact(*out); err != nil {
			logging.Fatal().Err(err).Str("path", *out).Msg("read artifact")
		}
		return
	}

	if *raw != "" {
		if _, err := trainer.Prepare(*raw, *cleanOut); err != nil {
			logging.Fatal().Err(err).Str("raw", *raw).Msg("clean dataset")
		}
		*data = *cleanOut
	}

	res, err := trainer.Run(*data, *out)
	if err != nil {
		logging.Fatal().Err(err).Str("data", *data).Msg("train model")
	}
	fmt.Printf("trained on %d rows, R² = %.4f, saved to %s\n", res.Rows, res.R2, *out)
}

func printArtifact(path string) error {
	lm, err := model.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%-10s %12.6f\n", "intercept", lm.Intercept)
	for i, name := range model.FeatureNames {
		fmt.Fprintf(os.Stdout, "%-10s %12.6f\n", name, lm.Coefficients[i])
	}
	return nil
}
