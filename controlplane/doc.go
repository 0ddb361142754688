// Package controlplane implements interfaces.ControlPlane.
//
// Client talks to the OpenSearch Serverless control plane through aws-sdk-go
// and maps ConflictException rejections to interfaces.ErrConflict.
// MemoryControlPlane keeps everything in memory and replays a scripted
// collection lifecycle; it backs dry runs. MockControlPlane is a testify mock.
package controlplane
