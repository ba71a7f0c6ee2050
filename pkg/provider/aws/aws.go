package aws

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	awsautoscaling "github.com/aws/aws-sdk-go/service/autoscaling"
	awsautoscalingiface "github.com/aws/aws-sdk-go/service/autoscaling/autoscalingiface"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/provider"
)

// Gateway represents the AWS Auto Scaling gateway; it implements provider.Gateway
type Gateway struct {
	name string

	client awsautoscalingiface.AutoScalingAPI

	config *cloudConfig
}

// NewClient creates a new instance of the AWS gateway, or an error
// It is expected that we should not modify the name or configuration here as the caller
// may not have passed a copy
func NewClient(name string, configuration map[string]string) (provider.Gateway, error) {
	if name == "" {
		return nil, errors.New("name must be provided")
	}

	config := cloudConfig{}
	if err := config.defaultAndValidate(configuration); err != nil {
		return nil, errors.Wrap(err, "validating configuration")
	}

	region := config.Region
	if region == "" {
		region = getRegion()
	}

	// Note that aws-sdk-go resolves credentials itself, e.g. from
	// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY or a shared profile
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "creating new AWS session")
	}

	return &Gateway{
		name:   name,
		client: awsautoscaling.New(sess),
		config: &config,
	}, nil
}

// Name returns the name of the gateway
func (g *Gateway) Name() string {
	return g.name
}

// ListGroups returns one page of Auto Scaling groups
func (g *Gateway) ListGroups(ctx context.Context, token string) ([]fleet.Group, string, error) {
	input := &awsautoscaling.DescribeAutoScalingGroupsInput{
		MaxRecords: aws.Int64(g.config.maxRecords),
	}
	if token != "" {
		input.NextToken = aws.String(token)
	}

	result, err := g.client.DescribeAutoScalingGroupsWithContext(ctx, input)
	if err != nil {
		return nil, "", classify(errors.Wrap(err, "describing autoscaling groups in AWS"), err)
	}

	if result == nil {
		return nil, "", errors.New("AWS returned nil result for describe autoscaling groups")
	}

	groups := make([]fleet.Group, 0, len(result.AutoScalingGroups))
	for _, asg := range result.AutoScalingGroups {
		if asg == nil {
			continue
		}
		groups = append(groups, groupFromASG(asg))
	}

	return groups, aws.StringValue(result.NextToken), nil
}

// UpdateCapacity sets the desired capacity of an Auto Scaling group
func (g *Gateway) UpdateCapacity(ctx context.Context, group string, desired int) error {
	log.Infof("AWS gateway %s is requesting AWS to scale %q to %d", g.Name(), group, desired)

	_, err := g.client.SetDesiredCapacityWithContext(ctx, &awsautoscaling.SetDesiredCapacityInput{
		AutoScalingGroupName: aws.String(group),
		DesiredCapacity:      aws.Int64(int64(desired)),
		HonorCooldown:        aws.Bool(false),
	})
	if err != nil {
		return classify(errors.Wrapf(err, "setting desired capacity of %q to %d in AWS", group, desired), err)
	}

	return nil
}

func groupFromASG(asg *awsautoscaling.Group) fleet.Group {
	g := fleet.Group{
		Name:    aws.StringValue(asg.AutoScalingGroupName),
		Desired: int(aws.Int64Value(asg.DesiredCapacity)),
		Min:     int(aws.Int64Value(asg.MinSize)),
		Max:     int(aws.Int64Value(asg.MaxSize)),
	}

	for _, t := range asg.Tags {
		if t == nil {
			continue
		}
		g.Tags = append(g.Tags, fleet.Tag{
			Key:   aws.StringValue(t.Key),
			Value: aws.StringValue(t.Value),
		})
	}

	return g
}

// classify marks wrapped as transient or permanent based on the original
// AWS error
func classify(wrapped error, original error) error {
	if request.IsErrorThrottle(original) || request.IsErrorRetryable(original) {
		return provider.Transient(wrapped)
	}

	if aerr, ok := original.(awserr.Error); ok {
		switch aerr.Code() {
		case awsautoscaling.ErrCodeScalingActivityInProgressFault,
			awsautoscaling.ErrCodeResourceContentionFault:
			return provider.Transient(wrapped)
		}
	}

	if rerr, ok := original.(awserr.RequestFailure); ok && rerr.StatusCode() >= 500 {
		return provider.Transient(wrapped)
	}

	return provider.Permanent(wrapped)
}

// Get the current AWS region, either from the environment or from the EC2
// metadata service if the env var is not set.
// This function is borrowed from https://github.com/kubernetes/autoscaler/tree/master/cluster-autoscaler
func getRegion(cfg ...*aws.Config) string {
	region, present := os.LookupEnv("AWS_REGION")
	if !present {
		svc := ec2metadata.New(session.New(), cfg...)
		if r, err := svc.Region(); err == nil {
			region = r
		}
	}
	return region
}
