package camera

type CameraBuilderOption func(*cameraImpl)
