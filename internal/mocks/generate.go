package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/race --output domain/race --outpkg racemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name UnitOfWork --dir ../domain/uow --output domain/uow --outpkg uowmock --filename unit_of_work_mock.go
