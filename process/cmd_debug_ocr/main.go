package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"dragyocr/pkg/dragy"
	"dragyocr/pkg/logger"
	"dragyocr/pkg/ocr"

	"go.uber.org/zap"
)

func main() {
	f := flag.String("file", "", "image file to OCR")
	textFile := flag.String("text", "", "text file to run the extractor on, skipping OCR")
	lang := flag.String("lang", ocr.DefaultLanguage, "tesseract language")
	flag.Parse()

	log, err := logger.New("debug")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var fragments []string
	switch {
	case *textFile != "":
		b, err := os.ReadFile(*textFile)
		if err != nil {
			log.Fatal("read text", zap.Error(err))
		}
		fragments = ocr.CleanFragments(strings.Split(string(b), "\n"))
	case *f != "":
		fragments, err = ocr.RecognizeFile(context.Background(), ocr.NewTesseractRecognizer(*lang, log), *f)
		if err != nil {
			log.Fatal("ocr error", zap.Error(err))
		}
	default:
		log.Fatal("-file or -text required")
	}

	for i, frag := range fragments {
		fmt.Printf("%3d %q\n", i, frag)
	}
	blob := ocr.Blob(fragments)
	rec := dragy.Assemble(fragments, blob, dragy.ExtractInfo(blob))
	out, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(out))
	fmt.Printf("fields=%v\n", rec.FieldsPresent())
}
