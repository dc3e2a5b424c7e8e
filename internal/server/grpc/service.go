package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "docvault.v1.DocumentVault"

// DocumentVaultServer is the server API of the vault. Every message is a
// google.protobuf.Struct.
type DocumentVaultServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReadDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteDocument(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDocuments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVersions(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateFolder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFolders(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RevokeShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateShare(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShares(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveShareToken(context.Context, *structpb.Struct) (*structpb.Struct, error)

	ToggleFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFavorites(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecentDocuments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStorageUsage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetActivityLog(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(DocumentVaultServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, m unaryMethod) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return m(srv.(DocumentVaultServer), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DocumentVaultServiceDesc is registered with grpc.Server.RegisterService.
var DocumentVaultServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DocumentVaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", DocumentVaultServer.Ping),
		unary("CreateDocument", DocumentVaultServer.CreateDocument),
		unary("ReadDocument", DocumentVaultServer.ReadDocument),
		unary("UpdateDocument", DocumentVaultServer.UpdateDocument),
		unary("DeleteDocument", DocumentVaultServer.DeleteDocument),
		unary("ListDocuments", DocumentVaultServer.ListDocuments),
		unary("ListVersions", DocumentVaultServer.ListVersions),
		unary("CreateFolder", DocumentVaultServer.CreateFolder),
		unary("ListFolders", DocumentVaultServer.ListFolders),
		unary("CreateShare", DocumentVaultServer.CreateShare),
		unary("RevokeShare", DocumentVaultServer.RevokeShare),
		unary("UpdateShare", DocumentVaultServer.UpdateShare),
		unary("ListShares", DocumentVaultServer.ListShares),
		unary("ResolveShareToken", DocumentVaultServer.ResolveShareToken),
		unary("ToggleFavorite", DocumentVaultServer.ToggleFavorite),
		unary("ListFavorites", DocumentVaultServer.ListFavorites),
		unary("ListRecentDocuments", DocumentVaultServer.ListRecentDocuments),
		unary("GetStorageUsage", DocumentVaultServer.GetStorageUsage),
		unary("GetActivityLog", DocumentVaultServer.GetActivityLog),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docvault/v1/vault.proto",
}

// FullMethod returns the path of a vault method as seen by interceptors.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}
