package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awsautoscaling "github.com/aws/aws-sdk-go/service/autoscaling"
	awsautoscalingiface "github.com/aws/aws-sdk-go/service/autoscaling/autoscalingiface"
)

// AutoScalingAPI is a mock of the calls the AWS gateway makes. Calling any
// other method of the interface panics.
type AutoScalingAPI struct {
	mock.Mock
	awsautoscalingiface.AutoScalingAPI
}

// DescribeAutoScalingGroupsWithContext provides a mock function with given fields: ctx, input, opts
func (_m *AutoScalingAPI) DescribeAutoScalingGroupsWithContext(ctx aws.Context, input *awsautoscaling.DescribeAutoScalingGroupsInput, opts ...request.Option) (*awsautoscaling.DescribeAutoScalingGroupsOutput, error) {
	ret := _m.Called(ctx, input)

	var r0 *awsautoscaling.DescribeAutoScalingGroupsOutput
	if rf, ok := ret.Get(0).(func(aws.Context, *awsautoscaling.DescribeAutoScalingGroupsInput) *awsautoscaling.DescribeAutoScalingGroupsOutput); ok {
		r0 = rf(ctx, input)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*awsautoscaling.DescribeAutoScalingGroupsOutput)
	}

	return r0, ret.Error(1)
}

// SetDesiredCapacityWithContext provides a mock function with given fields: ctx, input, opts
func (_m *AutoScalingAPI) SetDesiredCapacityWithContext(ctx aws.Context, input *awsautoscaling.SetDesiredCapacityInput, opts ...request.Option) (*awsautoscaling.SetDesiredCapacityOutput, error) {
	ret := _m.Called(ctx, input)

	var r0 *awsautoscaling.SetDesiredCapacityOutput
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*awsautoscaling.SetDesiredCapacityOutput)
	}

	return r0, ret.Error(1)
}
