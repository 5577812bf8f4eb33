package logging

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggingTestSuite struct {
	suite.Suite
}

func TestLoggingSuite(t *testing.T) {
	suite.Run(t, new(LoggingTestSuite))
}

func (s *LoggingTestSuite) TestNew() {
	log, err := New("debug")
	s.Require().NoError(err)
	s.NotNil(log)
	s.True(log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("")
	s.Require().NoError(err)
	s.False(log.Core().Enabled(zapcore.DebugLevel))
	s.True(log.Core().Enabled(zapcore.InfoLevel))
}

func (s *LoggingTestSuite) TestNewBadLevel() {
	log, err := New("loud")
	s.Error(err)
	s.Nil(log)
}

func (s *LoggingTestSuite) TestParseLevel() {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		s.NoError(err, in)
		s.Equal(want, got, in)
	}
}
