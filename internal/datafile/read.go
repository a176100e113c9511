package datafile

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jhau/s7150duo/internal/errors"
)

// Log is a parsed acquisition file.
type Log struct {
	Program string
	Comment string
	Start   time.Time
	Stop    time.Time
	Records []Record
}

const (
	startPrefix = "# Acquisition start: "
	stopPrefix  = "# Acquisition stop: "
)

// ReadLog parses a completed acquisition file back into its records, in
// file order. Sample lines carry exactly three tab-separated fields.
func ReadLog(r io.Reader) (*Log, error) {
	errFactory := errors.New()

	var (
		log     Log
		lineNum int
		sawName bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, startPrefix):
				t, err := time.Parse(timeLayout, strings.TrimPrefix(line, startPrefix))
				if err != nil {
					return nil, errFactory.Wrap(ErrParseFailed, err).WithData(lineNum)
				}
				log.Start = t
			case strings.HasPrefix(line, stopPrefix):
				t, err := time.Parse(timeLayout, strings.TrimPrefix(line, stopPrefix))
				if err != nil {
					return nil, errFactory.Wrap(ErrParseFailed, err).WithData(lineNum)
				}
				log.Stop = t
			case !sawName:
				log.Program = strings.TrimSpace(strings.TrimPrefix(line, "#"))
				sawName = true
			case log.Comment == "" && !strings.Contains(line, "\t"):
				log.Comment = strings.TrimSpace(strings.TrimPrefix(line, "#"))
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return nil, errFactory.WithData(ErrParseFailed, lineNum)
		}

		minutes, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errFactory.Wrap(ErrParseFailed, err).WithData(lineNum)
		}

		log.Records = append(log.Records, Record{
			Minutes:  minutes,
			Reading1: fields[1],
			Reading2: fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errFactory.Wrap(ErrParseFailed, err)
	}

	return &log, nil
}
