// Package cloudwatch implements a source.Source that pulls a CloudWatch
// Logs group/stream's messages for fleets that already ship their build
// logs off-box.
package cloudwatch

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/bascanada/buildlog/pkg/source"
)

const (
	optionLogGroup  string = "logGroup"
	optionLogStream string = "logStream"
	optionRegion    string = "region"
	optionProfile   string = "profile"
	optionEndpoint  string = "endpoint"
)

// cwClient is the subset of the SDK client this source calls, narrowed so
// tests can substitute a fake.
type cwClient interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

type cloudwatchSource struct {
	client    cwClient
	logGroup  string
	logStream string
}

func init() {
	source.Register("cloudwatch", func(opts map[string]string) (source.Source, error) {
		return newSource(opts)
	})
}

func newSource(opts map[string]string) (cloudwatchSource, error) {
	logGroup := opts[optionLogGroup]
	if logGroup == "" {
		return cloudwatchSource{}, errors.New("cloudwatch source: logGroup is required")
	}

	var cfgOptions []func(*config.LoadOptions) error
	if region := opts[optionRegion]; region != "" {
		cfgOptions = append(cfgOptions, config.WithRegion(region))
	}
	if profile := opts[optionProfile]; profile != "" {
		cfgOptions = append(cfgOptions, config.WithSharedConfigProfile(profile))
	}
	if endpoint := opts[optionEndpoint]; endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if strings.Contains(strings.ToLower(service), "logs") {
				return aws.Endpoint{URL: endpoint, PartitionID: "aws", SigningRegion: region}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		cfgOptions = append(cfgOptions, config.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), cfgOptions...)
	if err != nil {
		return cloudwatchSource{}, err
	}

	return cloudwatchSource{
		client:    cloudwatchlogs.NewFromConfig(cfg),
		logGroup:  logGroup,
		logStream: opts[optionLogStream],
	}, nil
}

// Open pages through FilterLogEvents and writes each event's message,
// newline-terminated, to a pipe — presenting the same raw line stream the
// local/ssh/k8s/docker backends produce.
func (s cloudwatchSource) Open(ctx context.Context) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.stream(ctx, pw)
		_ = pw.CloseWithError(err)
	}()
	return pr, nil
}

func (s cloudwatchSource) stream(ctx context.Context, w io.Writer) error {
	input := &cloudwatchlogs.FilterLogEventsInput{LogGroupName: &s.logGroup}
	if s.logStream != "" {
		input.LogStreamNames = []string{s.logStream}
	}

	for {
		out, err := s.client.FilterLogEvents(ctx, input)
		if err != nil {
			return err
		}
		for _, ev := range out.Events {
			if err := writeEvent(w, ev); err != nil {
				return err
			}
		}
		if out.NextToken == nil {
			return nil
		}
		input.NextToken = out.NextToken
	}
}

func writeEvent(w io.Writer, ev types.FilteredLogEvent) error {
	if ev.Message == nil {
		return nil
	}
	_, err := io.WriteString(w, *ev.Message+"\n")
	return err
}
