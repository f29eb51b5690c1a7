// Package wire defines the gRPC contract between the requester and the
// identity holder. The single unary method takes google.protobuf.Empty and
// answers with a google.protobuf.Struct carrying the result code and, on
// approval, the username and nickname.
//
// The service descriptor is written out by hand in the shape protoc-gen-go-grpc
// produces, since both messages are well-known types.
package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "quickauth.v1.IdentityHolder"

	IdentityHolder_Authorize_FullMethodName = "/quickauth.v1.IdentityHolder/Authorize"
)

// IdentityHolderClient is the client API for the IdentityHolder service.
type IdentityHolderClient interface {
	Authorize(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type identityHolderClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityHolderClient(cc grpc.ClientConnInterface) IdentityHolderClient {
	return &identityHolderClient{cc}
}

func (c *identityHolderClient) Authorize(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, IdentityHolder_Authorize_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IdentityHolderServer is the server API for the IdentityHolder service.
type IdentityHolderServer interface {
	Authorize(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedIdentityHolderServer can be embedded to have forward
// compatible implementations.
type UnimplementedIdentityHolderServer struct{}

func (UnimplementedIdentityHolderServer) Authorize(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Authorize not implemented")
}

func RegisterIdentityHolderServer(s grpc.ServiceRegistrar, srv IdentityHolderServer) {
	s.RegisterService(&IdentityHolder_ServiceDesc, srv)
}

func _IdentityHolder_Authorize_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityHolderServer).Authorize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: IdentityHolder_Authorize_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(IdentityHolderServer).Authorize(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// IdentityHolder_ServiceDesc is the grpc.ServiceDesc for the IdentityHolder
// service.
var IdentityHolder_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityHolderServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Authorize",
			Handler:    _IdentityHolder_Authorize_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "quickauth/v1/identity_holder.proto",
}
