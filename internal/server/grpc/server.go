package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/services"
	"google.golang.org/grpc"
)

type documentService interface {
	Create(ctx context.Context, ownerID string, in services.CreateDocumentInput) (*models.Document, error)
	Read(ctx context.Context, documentID, requesterID string) (*services.ReadResult, error)
	ReadVersion(ctx context.Context, documentID, requesterID string, n int64) (*services.VersionContent, error)
	Update(ctx context.Context, documentID, requesterID string, in services.UpdateDocumentInput) (*models.Document, error)
	SoftDelete(ctx context.Context, documentID, ownerID string) error
	HardDelete(ctx context.Context, documentID, ownerID string) error
	List(ctx context.Context, filter models.DocumentFilter) (*services.ListResult, error)
	ListVersions(ctx context.Context, documentID, requesterID string) ([]*models.DocumentVersion, error)
}

type shareService interface {
	CreateGrant(ctx context.Context, documentID, ownerID string, targetUserID *string,
		perm models.Permission, expiresAt *time.Time) (*models.ShareGrant, error)
	ResolveByToken(ctx context.Context, token string) (*services.SharedDocument, error)
	RevokeGrant(ctx context.Context, grantID, ownerID string) error
	UpdatePermission(ctx context.Context, grantID, ownerID string, perm models.Permission) error
	ListGrants(ctx context.Context, documentID, ownerID string) ([]*models.ShareGrant, error)
}

type folderService interface {
	Create(ctx context.Context, ownerID string, in services.CreateFolderInput) (*models.Folder, error)
	List(ctx context.Context, ownerID string, parentID *string, includeDeleted bool) ([]*models.Folder, error)
}

type favoriteService interface {
	Toggle(ctx context.Context, userID, documentID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.RecentAccess, error)
}

type quotaService interface {
	Get(ctx context.Context, userID string) (*models.StorageQuota, error)
}

type activityService interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityEntry, error)
}

type GRPCServer struct {
	address   string
	documents documentService
	shares    shareService
	folders   folderService
	favorites favoriteService
	quota     quotaService
	activity  activityService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, svc *services.Services, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		documents: svc.Documents,
		shares:    svc.Shares,
		folders:   svc.Folders,
		favorites: svc.Favorites,
		quota:     svc.Quota,
		activity:  svc.Activity,
		jwtSecret: []byte(secretKey),
	}
}

// Register installs the vault service on srv.
func (s *GRPCServer) Register(srv *grpc.Server) {
	srv.RegisterService(&DocumentVaultServiceDesc, s)
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is done.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.accessTokenInterceptor))
	s.Register(srv)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
